package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/pro-booking/internal/model"
)

// VendorRepo reads the professional directory (vendors table).  Profiles
// are managed by another service; this repo never writes them except to
// seed local and test databases.
type VendorRepo struct{ DB *sql.DB }

func NewVendorRepo(db *sql.DB) *VendorRepo { return &VendorRepo{DB: db} }

// GetVendor fetches a professional by id.
func (r *VendorRepo) GetVendor(ctx context.Context, id string) (model.Vendor, error) {
	var v model.Vendor
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, display_name, phone FROM vendors WHERE id=? LIMIT 1",
		id).Scan(&v.ID, &v.Name, &v.Phone)
	return v, classify(err)
}

// Upsert inserts or replaces a directory entry.
func (r *VendorRepo) Upsert(ctx context.Context, v model.Vendor) error {
	_, err := r.DB.ExecContext(ctx,
		"REPLACE INTO vendors (id, display_name, phone) VALUES (?,?,?)",
		v.ID, v.Name, v.Phone)
	return classify(err)
}
