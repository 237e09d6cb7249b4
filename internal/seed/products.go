package seed

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LoadProducts ingests an optional starter catalog into the products table,
// ignoring rows whose barcode is already registered. Columns:
// name, price, barcode, stock, unit.
func LoadProducts(db *sqlx.DB, csvPath string) {
	file, err := os.Open(csvPath)
	if err != nil {
		log.Printf("no product catalog at %s: %v", csvPath, err)
		return
	}
	defer file.Close()

	reader := csv.NewReader(file)
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Printf("unable to read product header: %v", err)
		return
	}

	tx, err := db.Beginx()
	if err != nil {
		log.Printf("unable to start product seed transaction: %v", err)
		return
	}
	stmt, err := tx.Preparex(`INSERT OR IGNORE INTO products (name, price, barcode, stock, unit) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("unable to prepare product insert: %v", err)
		_ = tx.Rollback()
		return
	}
	defer stmt.Close()

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("unable to read product row: %v", err)
			continue
		}
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(record[1]))
		if err != nil || price.IsNegative() {
			log.Printf("skipping product %s: bad price %q", name, record[1])
			continue
		}

		var barcode *string
		if len(record) > 2 {
			if code := strings.TrimSpace(record[2]); code != "" {
				barcode = &code
			}
		}
		var stock int64
		if len(record) > 3 {
			stock, _ = strconv.ParseInt(strings.TrimSpace(record[3]), 10, 64)
		}
		unit := "unit"
		if len(record) > 4 {
			if u := strings.TrimSpace(record[4]); u != "" {
				unit = u
			}
		}

		if _, err := stmt.Exec(name, price, barcode, stock, unit); err != nil {
			log.Printf("unable to insert product %s: %v", name, err)
		} else {
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		log.Printf("unable to commit product seed: %v", err)
	} else {
		log.Printf("seeded product catalog with %d rows", rows)
	}
}
