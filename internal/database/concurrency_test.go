package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"slotmarket/internal/domain"
	"slotmarket/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimSlotConcurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.CreateAppointment(ctx, &models.AppointmentRecord{
		ID: "a1", ProfessionalID: "p1", Date: "2025-03-11", Time: "09:00",
	}))

	const workers = 10
	var (
		wg      sync.WaitGroup
		won     atomic.Int32
		taken   atomic.Int32
		unknown atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := db.ClaimSlot(ctx, "a1", fmt.Sprintf("c%d", n))
			switch {
			case err == nil:
				won.Add(1)
			case errors.Is(err, domain.ErrSlotTaken):
				taken.Add(1)
			default:
				unknown.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), won.Load())
	assert.Equal(t, int32(workers-1), taken.Load())
	assert.Equal(t, int32(0), unknown.Load())

	recs, err := db.AppointmentsByProfessional(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.True(t, recs[0].IsClaimed())
}
