package repository

import "gorm.io/gorm"

type Repository struct {
	DB         *gorm.DB
	Products   ProductRepo
	Orders     OrderRepo
	OrderItems OrderItemRepo
	Profiles   ProfileRepo
}

func buildRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:         db,
		Products:   NewProductRepo(db),
		Orders:     NewOrderRepo(db),
		OrderItems: NewOrderItemRepo(db),
		Profiles:   NewProfileRepo(db),
	}
}

func New(db *gorm.DB) *Repository { return buildRepository(db) }
