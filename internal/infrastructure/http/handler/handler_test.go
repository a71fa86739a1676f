package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mrops-br/storefront-api/internal/app/dto"
	"github.com/mrops-br/storefront-api/internal/domain"
	"github.com/mrops-br/storefront-api/internal/infrastructure/http/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    int
	}{
		{name: "single object", body: `{"productId": 3}`, want: 3},
		{name: "trailing whitespace", body: "{\"productId\": 3}\n  ", want: 3},
		{name: "concatenated objects", body: `{"productId":1}{"productId":2}`, wantErr: true},
		{name: "trailing garbage", body: `{"productId":1} x`, wantErr: true},
		{name: "trailing array", body: `{"productId":1}[]`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cart/items", strings.NewReader(tt.body))

			var dest dto.AddToCartRequest
			err := decodeJSONBody(req, &dest)
			if tt.wantErr {
				var reqErr *requestError
				require.ErrorAs(t, err, &reqErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, dest.ProductID)
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "request error", err: &requestError{msg: "bad"}, status: http.StatusBadRequest},
		{name: "product not found", err: fmt.Errorf("lookup: %w", domain.ErrProductNotFound), status: http.StatusNotFound},
		{name: "cart item not found", err: domain.ErrCartItemNotFound, status: http.StatusNotFound},
		{name: "invalid product id", err: domain.ErrInvalidProductID, status: http.StatusBadRequest},
		{name: "client cancelled", err: context.Canceled, status: response.StatusClientClosedRequest},
		{name: "deadline exceeded", err: context.DeadlineExceeded, status: http.StatusGatewayTimeout},
		{name: "unexpected", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
