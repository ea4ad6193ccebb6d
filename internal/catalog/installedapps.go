package catalog

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/localdrive/triage/internal/types"
)

// UpsertInstalledApplications bulk-upserts InstalledApplication rows, keyed
// on registry-key. Display/hint-only, not on the hot path.
func (c *Catalog) UpsertInstalledApplications(apps []types.InstalledApplication) error {
	return c.withTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO installed_applications (name, registry_key, install_path, publisher)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(registry_key) DO UPDATE SET
				name=excluded.name, install_path=excluded.install_path, publisher=excluded.publisher
		`)
		if err != nil {
			return errors.Wrap(err, "prepare upsert installed applications")
		}
		defer stmt.Close()

		for _, a := range apps {
			if _, err := stmt.Exec(a.Name, a.RegistryKey, a.InstallPath, a.Publisher); err != nil {
				return errors.Wrapf(err, "upsert installed application %s", a.RegistryKey)
			}
		}
		return nil
	})
}

// InstalledApplications returns every installed application row, for
// display by the review UI.
func (c *Catalog) InstalledApplications() ([]types.InstalledApplication, error) {
	rows, err := c.db.Query(`SELECT id, name, registry_key, install_path, publisher FROM installed_applications`)
	if err != nil {
		return nil, errors.Wrap(err, "query installed applications")
	}
	defer rows.Close()

	var out []types.InstalledApplication
	for rows.Next() {
		var a types.InstalledApplication
		if err := rows.Scan(&a.ID, &a.Name, &a.RegistryKey, &a.InstallPath, &a.Publisher); err != nil {
			return nil, errors.Wrap(err, "scan installed application")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
