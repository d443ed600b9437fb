package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehy12/edumate/core"
)

func TestDSN(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db.local",
		Port:          5433,
		Name:          "edumate",
		User:          "app",
		Password:      "p@ss word",
		AdminUser:     "root",
		AdminPassword: "toor",
	}}

	tests := []struct {
		name     string
		dbName   string
		admin    bool
		tls      bool
		wantUser string
		wantPass string
		wantSSL  string
	}{
		{name: "app user", dbName: "edumate", wantUser: "app", wantPass: "p@ss word", wantSSL: "require", tls: true},
		{name: "admin user", dbName: "postgres", admin: true, wantUser: "root", wantPass: "toor", wantSSL: "disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf.Database.DisableTLS = !tt.tls
			u, err := url.Parse(dsn(tt.dbName, tt.admin, conf))
			require.NoError(t, err)

			assert.Equal(t, "postgres", u.Scheme)
			assert.Equal(t, "db.local:5433", u.Host)
			assert.Equal(t, "/"+tt.dbName, u.Path)
			assert.Equal(t, tt.wantUser, u.User.Username())
			pass, _ := u.User.Password()
			assert.Equal(t, tt.wantPass, pass)
			assert.Equal(t, tt.wantSSL, u.Query().Get("sslmode"))
			assert.Equal(t, "utc", u.Query().Get("timezone"))
		})
	}

	t.Run("admin falls back to app user", func(t *testing.T) {
		conf.Database.AdminUser = ""
		u, err := url.Parse(dsn("postgres", true, conf))
		require.NoError(t, err)
		assert.Equal(t, "app", u.User.Username())
	})
}
