package errors

import (
	"context"
	goerrors "errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "deadline", err: fmt.Errorf("touch: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "postgres", err: fmt.Errorf("lookup: %w", &pgconn.PgError{Code: "57P01"}), want: "postgres_57p01"},
		{
			name: "network",
			err:  &net.OpError{Op: "dial", Net: "tcp", Err: goerrors.New("connection refused")},
			want: "network",
		},
		{name: "plain wrapped", err: fmt.Errorf("a: %w", goerrors.New("b")), want: "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
