package extract

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price_backend/internal/feature/products/domain/entity"
)

type fakeExtractor struct {
	ExtractFunc func(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error)
	GotHTML     string
}

func (f *fakeExtractor) ExtractProduct(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error) {
	f.GotHTML = pageHTML
	return f.ExtractFunc(ctx, pageHTML)
}

func TestPageFetcher_Fetch(t *testing.T) {
	t.Run("returns extracted product with url and fetch time", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.Header.Get("User-Agent"), "price-backend")
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><h1>Linen Shirt</h1><span>$49.99</span></html>`))
		}))
		defer srv.Close()

		extractor := &fakeExtractor{
			ExtractFunc: func(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error) {
				return &entity.FetchedPrice{Name: "Linen Shirt", Price: 49.99, Currency: "USD"}, nil
			},
		}
		f := NewPageFetcher(srv.Client(), extractor)

		before := time.Now().UTC()
		got, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)

		assert.Equal(t, "Linen Shirt", got.Name)
		assert.Equal(t, 49.99, got.Price)
		assert.Equal(t, srv.URL, got.URL)
		assert.False(t, got.FetchedAt.Before(before))
		assert.Contains(t, extractor.GotHTML, "Linen Shirt")
	})

	t.Run("http error status fails the fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		extractor := &fakeExtractor{
			ExtractFunc: func(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error) {
				t.Fatal("extractor must not run for an error response")
				return nil, nil
			},
		}
		f := NewPageFetcher(srv.Client(), extractor)

		_, err := f.Fetch(context.Background(), srv.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http 404")
	})

	t.Run("extractor failure is wrapped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer srv.Close()

		extractErr := errors.New("page does not contain a priced product")
		extractor := &fakeExtractor{
			ExtractFunc: func(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error) {
				return nil, extractErr
			},
		}
		f := NewPageFetcher(srv.Client(), extractor)

		_, err := f.Fetch(context.Background(), srv.URL)
		assert.ErrorIs(t, err, extractErr)
	})

	t.Run("page body is capped before extraction", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(strings.Repeat("x", maxPageBytes+4096)))
		}))
		defer srv.Close()

		extractor := &fakeExtractor{
			ExtractFunc: func(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error) {
				return &entity.FetchedPrice{Name: "Item", Price: 1}, nil
			},
		}
		f := NewPageFetcher(srv.Client(), extractor)

		_, err := f.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
		assert.Len(t, extractor.GotHTML, maxPageBytes)
	})

	t.Run("cancelled context aborts the request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html></html>`))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		f := NewPageFetcher(srv.Client(), &fakeExtractor{
			ExtractFunc: func(ctx context.Context, pageHTML string) (*entity.FetchedPrice, error) {
				return &entity.FetchedPrice{Name: "Item", Price: 1}, nil
			},
		})
		_, err := f.Fetch(ctx, srv.URL)
		assert.Error(t, err)
	})
}
