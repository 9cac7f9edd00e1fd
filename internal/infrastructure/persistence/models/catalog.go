package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
)

// CategoryModel is the persistence model for the Category domain entity.
// Name and slug are unique among live rows (partial indexes in migrations).
type CategoryModel struct {
	AggregateModel
	Name     string     `gorm:"type:varchar(100);not null"`
	Slug     string     `gorm:"type:varchar(120);not null"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`
	IsActive bool       `gorm:"not null;default:true"`
	SoftDeleteColumns
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		ParentID:          m.ParentID,
		IsActive:          m.IsActive,
		Lifecycle:         m.ToLifecycle(),
	}
}

// FromDomain populates the persistence model from a domain Category entity
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Slug = c.Slug
	m.ParentID = c.ParentID
	m.IsActive = c.IsActive
	m.FromLifecycle(c.Lifecycle)
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// BrandModel is the persistence model for the Brand domain entity
type BrandModel struct {
	AggregateModel
	Name string `gorm:"type:varchar(100);not null"`
	Slug string `gorm:"type:varchar(120);not null"`
	SoftDeleteColumns
}

// TableName returns the table name for GORM
func (BrandModel) TableName() string {
	return "brands"
}

// ToDomain converts the persistence model to a domain Brand entity
func (m *BrandModel) ToDomain() *catalog.Brand {
	return &catalog.Brand{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Lifecycle:         m.ToLifecycle(),
	}
}

// FromDomain populates the persistence model from a domain Brand entity
func (m *BrandModel) FromDomain(b *catalog.Brand) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.Slug = b.Slug
	m.FromLifecycle(b.Lifecycle)
}

// ProductModel is the persistence model for the Product domain entity
type ProductModel struct {
	AggregateModel
	Name         string          `gorm:"type:varchar(200);not null"`
	Slug         string          `gorm:"type:varchar(220);not null;index"`
	Image        string          `gorm:"type:varchar(500);not null"`
	Description  string          `gorm:"type:text;not null"`
	BrandID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CategoryID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CountInStock int             `gorm:"not null;default:0"`
	Views        int64           `gorm:"not null;default:0"`
	Sales        int64           `gorm:"not null;default:0"`
	SoftDeleteColumns
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Slug:              m.Slug,
		Image:             m.Image,
		Description:       m.Description,
		BrandID:           m.BrandID,
		CategoryID:        m.CategoryID,
		Price:             m.Price,
		CountInStock:      m.CountInStock,
		Views:             m.Views,
		Sales:             m.Sales,
		Lifecycle:         m.ToLifecycle(),
	}
}

// FromDomain populates the persistence model from a domain Product entity
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.Slug = p.Slug
	m.Image = p.Image
	m.Description = p.Description
	m.BrandID = p.BrandID
	m.CategoryID = p.CategoryID
	m.Price = p.Price
	m.CountInStock = p.CountInStock
	m.Views = p.Views
	m.Sales = p.Sales
	m.FromLifecycle(p.Lifecycle)
}
