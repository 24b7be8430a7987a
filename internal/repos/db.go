package repos

import (
	"errors"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// OpenDB opens the SQLite store, creates the schema and, when seed is set,
// inserts demo inventory, customers and staff into an empty database.
func OpenDB(dsn string, seed bool) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", withPragmas(dsn))
	if err != nil {
		return nil, err
	}
	// One connection: SQLite allows a single writer, and ":memory:" databases
	// are per-connection. Write transactions queue on the pool instead of
	// failing with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	if seed {
		if err := seedIfEmpty(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// withPragmas puts the connection pragmas in the DSN so every connection the
// driver opens enforces foreign keys, not just the first one.
func withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range []string{"foreign_keys(1)", "busy_timeout(5000)"} {
		if !strings.Contains(dsn, "_pragma="+p) {
			dsn += sep + "_pragma=" + p
			sep = "&"
		}
	}
	return dsn
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Cars (inventory)
CREATE TABLE IF NOT EXISTS cars(
  id TEXT PRIMARY KEY,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  vin TEXT NOT NULL COLLATE NOCASE UNIQUE,
  color TEXT NOT NULL DEFAULT '',
  condition TEXT NOT NULL CHECK (condition IN ('New','Used','CertifiedPreOwned')),
  price TEXT NOT NULL CHECK (CAST(price AS REAL) >= 0),
  mileage INTEGER NOT NULL DEFAULT 0 CHECK (mileage >= 0),
  date_added TEXT NOT NULL,
  sold INTEGER NOT NULL DEFAULT 0 CHECK (sold IN (0,1))
);
CREATE INDEX IF NOT EXISTS idx_cars_make       ON cars(LOWER(make));
CREATE INDEX IF NOT EXISTS idx_cars_model      ON cars(LOWER(model));
CREATE INDEX IF NOT EXISTS idx_cars_sold       ON cars(sold);
CREATE INDEX IF NOT EXISTS idx_cars_date_added ON cars(date_added);

-- Customers
CREATE TABLE IF NOT EXISTS customers(
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL COLLATE NOCASE UNIQUE,
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  registration_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_customers_name ON customers(LOWER(last_name), LOWER(first_name));

-- Employees
CREATE TABLE IF NOT EXISTS employees(
  id TEXT PRIMARY KEY,
  first_name TEXT NOT NULL,
  last_name TEXT NOT NULL,
  email TEXT NOT NULL COLLATE NOCASE UNIQUE,
  phone TEXT NOT NULL DEFAULT '',
  position TEXT NOT NULL,
  hire_date TEXT NOT NULL,
  salary TEXT NOT NULL DEFAULT '0',
  commission_rate TEXT NULL
);
CREATE INDEX IF NOT EXISTS idx_employees_position ON employees(LOWER(position));

-- Sales
CREATE TABLE IF NOT EXISTS sales(
  id TEXT PRIMARY KEY,
  car_id TEXT NOT NULL REFERENCES cars(id) ON DELETE RESTRICT,
  customer_id TEXT NOT NULL REFERENCES customers(id) ON DELETE RESTRICT,
  salesperson_id TEXT NOT NULL REFERENCES employees(id) ON DELETE RESTRICT,
  sale_date TEXT NOT NULL,
  sale_price TEXT NOT NULL,
  tax TEXT NOT NULL,
  total_price TEXT NOT NULL,
  payment_method TEXT NOT NULL DEFAULT '',
  sale_status TEXT NOT NULL CHECK (sale_status IN ('Pending','Completed','Cancelled'))
);
CREATE INDEX IF NOT EXISTS idx_sales_car         ON sales(car_id);
CREATE INDEX IF NOT EXISTS idx_sales_customer    ON sales(customer_id);
CREATE INDEX IF NOT EXISTS idx_sales_salesperson ON sales(salesperson_id);
CREATE INDEX IF NOT EXISTS idx_sales_date        ON sales(sale_date);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM cars`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo cars/customers/employees")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO cars(id,make,model,year,vin,color,condition,price,mileage,date_added,sold) VALUES
	  ('car-001','Toyota','Camry',2024,'4T1BF1FK5CU123456','Silver','New','27500.00',12,date('now'),0),
	  ('car-002','Honda','Civic',2021,'2HGFC2F59MH123457','Blue','Used','19900.00',28150,date('now','-3 days'),0),
	  ('car-003','Ford','F-150',2022,'1FTEW1EP7NFA12345','Black','CertifiedPreOwned','38450.00',15400,date('now','-10 days'),0),
	  ('car-004','Tesla','Model 3',2023,'5YJ3E1EA7PF123459','White','Used','31200.00',9800,date('now','-1 days'),0),
	  ('car-005','Mazda','CX-5',2020,'JM3KFBCM1L0123460','Red','Used','18750.00',41200,date('now','-30 days'),1)`)

	tx.MustExec(`INSERT INTO customers(id,first_name,last_name,email,phone,address,registration_date) VALUES
	  ('cust-001','Dana','Reyes','dana.reyes@example.test','555-0101','12 Elm St, Springfield',date('now','-60 days')),
	  ('cust-002','Sam','Okafor','sam.okafor@example.test','555-0102','48 Oak Ave, Springfield',date('now','-20 days')),
	  ('cust-003','Lee','Nguyen','lee.nguyen@example.test','555-0103','7 Pine Rd, Shelbyville',date('now','-2 days'))`)

	tx.MustExec(`INSERT INTO employees(id,first_name,last_name,email,phone,position,hire_date,salary,commission_rate) VALUES
	  ('emp-001','Alex','Morgan','alex.morgan@dealer.test','555-0201','Salesperson','2021-03-15','42000.00','0.05'),
	  ('emp-002','Jordan','Price','jordan.price@dealer.test','555-0202','Salesperson','2023-06-01','38000.00',NULL),
	  ('emp-003','Casey','Wong','casey.wong@dealer.test','555-0203','SalesManager','2018-09-10','76000.00','0.02'),
	  ('emp-004','Riley','Adams','riley.adams@dealer.test','555-0204','Mechanic','2019-01-07','51000.00',NULL)`)

	// car-005 is on the books as sold; keep its sale so the sold flag is backed.
	tx.MustExec(`INSERT INTO sales(id,car_id,customer_id,salesperson_id,sale_date,sale_price,tax,total_price,payment_method,sale_status) VALUES
	  ('sale-001','car-005','cust-001','emp-001',date('now','-5 days'),'18000.00','1440.00','19440.00','Financing','Completed')`)

	return tx.Commit()
}

// ErrConflict is returned by guarded updates whose precondition no longer
// holds, e.g. marking an already sold car as sold.
var ErrConflict = errors.New("row state changed")

func constraintError(err error, kind string) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), kind)
}

// IsForeignKeyViolation reports a delete or insert refused by a REFERENCES clause.
func IsForeignKeyViolation(err error) bool { return constraintError(err, "FOREIGN KEY") }

// IsUniqueViolation reports a duplicate VIN or email.
func IsUniqueViolation(err error) bool { return constraintError(err, "UNIQUE") }
