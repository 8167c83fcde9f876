// internal/inventory/metrics_test.go
package inventory

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// installMeter routes the global meter provider to a manual reader for the
// duration of the test. It must run before the service is created.
func installMeter(t *testing.T) *sdkmetric.ManualReader {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	prev := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)
	t.Cleanup(func() {
		otel.SetMeterProvider(prev)
		provider.Shutdown(context.Background())
	})
	return reader
}

// mutationCounts returns the inventory.mutations total per operation.
func mutationCounts(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "inventory.mutations" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "inventory.mutations is a %T", m.Data)
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value("operation")
				counts[op.AsString()] += dp.Value
			}
		}
	}
	return counts
}

func TestMutationCounterIgnoresRejectedInput(t *testing.T) {
	reader := installMeter(t)
	s := NewService(nil, nil, log.New(io.Discard, "", 0))
	ctx := context.Background()

	_, err := s.AddCategory(ctx, UncategorizedLabel, "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = s.AddItem(ctx, ItemInput{Name: " "})
	assert.ErrorIs(t, err, ErrValidation)

	assert.Empty(t, mutationCounts(t, reader))
}

func TestMutationCounterCountsCommits(t *testing.T) {
	reader := installMeter(t)
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddCategory(ctx, "Tools", "")
	require.NoError(t, err)
	_, err = s.AddCategory(ctx, "Tools", "again")
	assert.ErrorIs(t, err, ErrDuplicateName)
	err = s.DeleteItem(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	mustAddItem(t, s, ItemInput{Name: "Saw", Quantity: 1, Price: money("5")})

	assert.Equal(t, map[string]int64{"add_category": 1, "add_item": 1}, mutationCounts(t, reader))
}
