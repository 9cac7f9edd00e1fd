package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"github.com/storefront/backend/internal/interfaces/http/dto"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// envelope is dto.Response with the data left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
}

// testEnv is the storefront API over an in-memory sqlite database
type testEnv struct {
	t          *testing.T
	db         *gorm.DB
	engine     *gin.Engine
	jwt        *auth.JWTService
	blacklist  *auth.InMemoryTokenBlacklist
	users      *persistence.GormUserRepository
	categories *persistence.GormCategoryRepository
	brands     *persistence.GormBrandRepository
	products   *persistence.GormProductRepository
	orders     *persistence.GormOrderRepository
	renderer   *fakeRenderer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(
		&models.UserModel{},
		&models.CategoryModel{},
		&models.BrandModel{},
		&models.ProductModel{},
		&models.OrderModel{},
	))

	env := &testEnv{
		t:  t,
		db: db,
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                "handler-test-secret-that-is-long-enough",
			AccessTokenExpiration: time.Hour,
			Issuer:                "storefront-test",
		}),
		blacklist:  auth.NewInMemoryTokenBlacklist(),
		users:      persistence.NewGormUserRepository(db),
		categories: persistence.NewGormCategoryRepository(db),
		brands:     persistence.NewGormBrandRepository(db),
		products:   persistence.NewGormProductRepository(db),
		orders:     persistence.NewGormOrderRepository(db),
		renderer:   &fakeRenderer{pdf: []byte("%PDF-1.7 fake invoice body %%EOF")},
	}

	categoryService := catalogapp.NewCategoryService(env.categories, cache.NewInMemoryCategoryTreeCache(time.Minute))
	brandService := catalogapp.NewBrandService(env.brands)
	productService := catalogapp.NewProductService(env.products, env.categories, env.brands, nil, catalogapp.DefaultProductServiceConfig())
	orderService := tradeapp.NewOrderService(env.orders, env.products, persistence.NewGormTxManager(db), tradeapp.DefaultPricing())
	invoiceService := tradeapp.NewInvoiceService(env.orders, env.users, env.renderer, tradeapp.InvoiceServiceConfig{
		Dir:      t.TempDir(),
		ShopName: "Test Shop",
		Currency: "USD",
	})
	authService := identityapp.NewAuthService(env.users, env.jwt, env.blacklist, zap.NewNop())

	jwtCfg := middleware.JWTMiddlewareConfig{JWTService: env.jwt, TokenBlacklist: env.blacklist, Logger: zap.NewNop()}
	guards := RouteGuards{
		Authenticated: middleware.JWTAuth(jwtCfg),
		Optional:      middleware.OptionalJWTAuth(jwtCfg),
		Admin:         middleware.RequireAdmin(),
	}

	env.engine = gin.New()
	env.engine.Use(middleware.RequestID(), logger.Recovery(zap.NewNop()))
	r := router.NewRouter(env.engine)
	r.Register(AuthRoutes(NewAuthHandler(authService), guards)).
		Register(CategoryRoutes(NewCategoryHandler(categoryService), guards)).
		Register(BrandRoutes(NewBrandHandler(brandService), guards)).
		Register(ProductRoutes(NewProductHandler(productService), guards)).
		Register(OrderRoutes(NewOrderHandler(orderService), NewInvoiceHandler(invoiceService), guards))
	r.Setup()
	return env
}

// do sends a JSON request to /api/v1 with an optional bearer token
func (e *testEnv) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(req)
}

func (e *testEnv) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// user stores an account and returns it with a signed token
func (e *testEnv) user(role identity.Role) (*identity.User, string) {
	e.t.Helper()
	u, err := identity.NewUser("User "+uuid.NewString()[:6], uuid.NewString()[:8]+"@example.com", "password123")
	require.NoError(e.t, err)
	if role == identity.RoleAdmin {
		u.Promote()
	}
	require.NoError(e.t, e.users.Save(context.Background(), u))

	token, err := e.jwt.GenerateAccessToken(auth.Subject{
		UserID: u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   string(u.Role),
	})
	require.NoError(e.t, err)
	return u, token.Token
}

func (e *testEnv) category(name string, parentID *uuid.UUID) *catalog.Category {
	e.t.Helper()
	c, err := catalog.NewCategory(name, parentID)
	require.NoError(e.t, err)
	require.NoError(e.t, e.categories.Save(context.Background(), c))
	return c
}

func (e *testEnv) brand(name string) *catalog.Brand {
	e.t.Helper()
	b, err := catalog.NewBrand(name)
	require.NoError(e.t, err)
	require.NoError(e.t, e.brands.Save(context.Background(), b))
	return b
}

func (e *testEnv) product(name string, price int64, stock int) *catalog.Product {
	e.t.Helper()
	p, err := catalog.NewProduct(name, "A "+name, "products/"+uuid.NewString()+".jpg",
		e.brand("Brand "+uuid.NewString()[:6]).ID, e.category("Category "+uuid.NewString()[:6], nil).ID,
		decimal.NewFromInt(price), stock)
	require.NoError(e.t, err)
	require.NoError(e.t, e.products.Save(context.Background(), p))
	return p
}

func (e *testEnv) reload(id uuid.UUID) *catalog.Product {
	e.t.Helper()
	p, err := e.products.FindByID(context.Background(), id)
	require.NoError(e.t, err)
	return p
}

// decode checks the status and unmarshals the envelope data into out
func decode(t *testing.T, w *httptest.ResponseRecorder, status int, out any) envelope {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
	return env
}

// errorCode checks the status and returns the error code of the response
func errorCode(t *testing.T, w *httptest.ResponseRecorder, status int) string {
	t.Helper()
	env := decode(t, w, status, nil)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

// fakeRenderer streams a fixed PDF from its own goroutine
type fakeRenderer struct {
	pdf       []byte
	chunkSize int
	failEarly error // reported before any chunk
	failLate  error // reported after the first chunk, without end

	mu      sync.Mutex
	lastDoc *tradeapp.InvoiceDocument
}

func (r *fakeRenderer) Render(_ context.Context, doc *tradeapp.InvoiceDocument, _ string, emit tradeapp.InvoiceEmitter) {
	r.mu.Lock()
	r.lastDoc = doc
	r.mu.Unlock()

	go func() {
		if r.failEarly != nil {
			emit.Done(r.failEarly)
			return
		}
		size := r.chunkSize
		if size <= 0 {
			size = 8
		}
		for off := 0; off < len(r.pdf); off += size {
			end := min(off+size, len(r.pdf))
			if err := emit.Chunk(r.pdf[off:end]); err != nil {
				emit.Done(err)
				return
			}
			if r.failLate != nil {
				emit.Done(r.failLate)
				return
			}
		}
		if err := emit.End(); err != nil {
			emit.Done(err)
			return
		}
		emit.Done(nil)
	}()
}

func (r *fakeRenderer) document() *tradeapp.InvoiceDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastDoc
}

var _ tradeapp.InvoiceRenderer = (*fakeRenderer)(nil)

func newJSONRequest(method, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
