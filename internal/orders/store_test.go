package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/foodsource-dev/foodsource/internal/apperr"
)

func TestTxnErrKindClassifiesTransportFailures(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{
			"network labeled command error",
			mongo.CommandError{Code: 6, Message: "host unreachable", Labels: []string{"NetworkError"}},
			apperr.Network,
		},
		{
			"deadline exceeded",
			context.DeadlineExceeded,
			apperr.Network,
		},
		{
			"write conflict after retries",
			mongo.CommandError{Code: 112, Message: "WriteConflict", Labels: []string{"TransientTransactionError"}},
			apperr.ConflictExhausted,
		},
		{
			"unclassified error",
			errors.New("callback gave up"),
			apperr.ConflictExhausted,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, txnErrKind(tc.err))
		})
	}
}
