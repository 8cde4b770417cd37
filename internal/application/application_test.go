package application

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"postgres://user:pw@localhost:5432/virex?sslmode=disable", "virex"},
		{"postgres://localhost", ""},
		{"::not a url", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DatabaseName(tt.url), tt.url)
	}
}

func TestApp_CloseRunsInReverse(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	app := &App{closers: []func() error{
		func() error { order = append(order, "pool"); return nil },
		func() error { order = append(order, "redis"); return boom },
	}}

	err := app.Close()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"redis", "pool"}, order)

	assert.NoError(t, app.Close())
	assert.Len(t, order, 2)
}
