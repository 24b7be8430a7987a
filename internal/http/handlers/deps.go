package handlers

import (
	"time"

	"dealership/internal/config"
	"dealership/internal/events"
	"dealership/internal/repos"
	"dealership/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	SaleHandler     *SaleHandler
	CarHandler      *CarHandler
	CustomerHandler *CustomerHandler
	EmployeeHandler *EmployeeHandler

	RequestTimeout time.Duration
}

func NewDeps(db *sqlx.DB, cfg config.Config, pub events.Publisher) *Deps {
	store := repos.NewStore(db)

	saleSvc := services.NewSaleService(store, pub)
	carSvc := services.NewCarService(store.Cars)
	custSvc := services.NewCustomerService(store.Customers)
	empSvc := services.NewEmployeeService(store.Employees)

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Deps{
		SaleHandler:     &SaleHandler{Sales: saleSvc},
		CarHandler:      &CarHandler{Cars: carSvc},
		CustomerHandler: &CustomerHandler{Customers: custSvc},
		EmployeeHandler: &EmployeeHandler{Employees: empSvc},
		RequestTimeout:  timeout,
	}
}
