package recon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comanda-system/internal/domain"
)

var base = time.Date(2026, 8, 31, 13, 0, 0, 0, time.UTC)

func order(id string, status domain.Status) domain.Order {
	return domain.Order{
		ID:          id,
		TableNumber: "4",
		Status:      status,
		CreatedAt:   base,
		Items: []domain.OrderLineItem{
			{ID: id + "-0", MenuItem: domain.MenuItem{ID: "m1", Name: "Patatas Bravas", Price: 6.5}, Quantity: 2},
		},
		TotalPrice: 13.0,
	}
}

func TestMergeLocalAheadWins(t *testing.T) {
	// Scenario A: the kitchen accepted locally but the snapshot has not
	// caught up yet.
	local := order("000001", domain.StatusCooking)
	local.AcceptedAt = base.Add(2 * time.Minute)
	remote := order("000001", domain.StatusPending)

	merged := Merge([]domain.Order{local}, []domain.Order{remote})
	require.Len(t, merged, 1)
	assert.Equal(t, domain.StatusCooking, merged[0].Status)
	assert.Equal(t, local.AcceptedAt, merged[0].AcceptedAt)
}

func TestMergeRemoteAheadAdopted(t *testing.T) {
	local := order("000001", domain.StatusPending)
	remote := order("000001", domain.StatusReady)
	remote.ServedAt = base.Add(10 * time.Minute)

	merged := Merge([]domain.Order{local}, []domain.Order{remote})
	require.Len(t, merged, 1)
	assert.Equal(t, domain.StatusReady, merged[0].Status)
	assert.Equal(t, remote.ServedAt, merged[0].ServedAt)
}

func TestMergeMonotonic(t *testing.T) {
	statuses := []domain.Status{domain.StatusPending, domain.StatusCooking, domain.StatusReady, domain.StatusServed}
	for _, ls := range statuses {
		for _, rs := range statuses {
			local := order("000007", ls)
			remote := order("000007", rs)
			merged := Merge([]domain.Order{local}, []domain.Order{remote})
			require.Len(t, merged, 1)

			want := domain.MaxStatus(ls, rs)
			assert.Equalf(t, want, merged[0].Status, "local=%s remote=%s", ls, rs)
		}
	}
}

func TestMergeIdempotent(t *testing.T) {
	a := []domain.Order{order("000001", domain.StatusCooking), order("000002", domain.StatusPending)}
	b := []domain.Order{order("000001", domain.StatusPending), order("000003", domain.StatusServed)}

	once := Merge(a, b)
	twice := Merge(once, b)
	assert.Equal(t, once, twice)
}

func TestMergeNoLossNoDuplicates(t *testing.T) {
	local := []domain.Order{order("000001", domain.StatusPending), order("000002", domain.StatusCooking)}
	remote := []domain.Order{order("000002", domain.StatusPending), order("000003", domain.StatusReady)}

	merged := Merge(local, remote)
	ids := make(map[string]int)
	for _, o := range merged {
		ids[o.ID]++
	}
	assert.Equal(t, map[string]int{"000001": 1, "000002": 1, "000003": 1}, ids)
}

func TestMergeLocalLagPreserved(t *testing.T) {
	// An order confirmed locally seconds ago is not in the snapshot yet.
	pendingLocal := order("000009", domain.StatusPending)
	remote := []domain.Order{order("000001", domain.StatusCooking)}

	merged := Merge([]domain.Order{pendingLocal}, remote)
	require.Len(t, merged, 2)
	assert.Equal(t, pendingLocal, merged[0])
}

func TestMergeUnknownRemoteOrderAdopted(t *testing.T) {
	// Scenario B: a previous session already pushed this order to ready.
	remote := order("000042", domain.StatusReady)
	merged := Merge(nil, []domain.Order{remote})
	require.Len(t, merged, 1)
	assert.Equal(t, remote, merged[0])
}

func TestMergeEqualRankPrefersLocalTimestamps(t *testing.T) {
	local := order("000001", domain.StatusCooking)
	local.AcceptedAt = base.Add(time.Minute)
	remote := order("000001", domain.StatusCooking)
	remote.AcceptedAt = base.Add(3 * time.Minute)

	merged := Merge([]domain.Order{local}, []domain.Order{remote})
	require.Len(t, merged, 1)
	assert.Equal(t, local.AcceptedAt, merged[0].AcceptedAt)
}

func TestMergeEqualRankFillsEmptyTimestampFromRemote(t *testing.T) {
	local := order("000001", domain.StatusCooking)
	remote := order("000001", domain.StatusCooking)
	remote.AcceptedAt = base.Add(3 * time.Minute)

	merged := Merge([]domain.Order{local}, []domain.Order{remote})
	require.Len(t, merged, 1)
	assert.Equal(t, remote.AcceptedAt, merged[0].AcceptedAt)
}

func TestMergeRemoteAuthoritativeForContent(t *testing.T) {
	// Everything except status and transition times follows the remote
	// row, which may have been corrected upstream.
	local := order("000001", domain.StatusCooking)
	remote := order("000001", domain.StatusPending)
	remote.TableNumber = "12"
	remote.TotalPrice = 99.0

	merged := Merge([]domain.Order{local}, []domain.Order{remote})
	require.Len(t, merged, 1)
	assert.Equal(t, domain.StatusCooking, merged[0].Status)
	assert.Equal(t, "12", merged[0].TableNumber)
	assert.Equal(t, 99.0, merged[0].TotalPrice)
}

func TestMergePureNoInputMutation(t *testing.T) {
	local := []domain.Order{order("000001", domain.StatusCooking)}
	remote := []domain.Order{order("000001", domain.StatusPending)}

	Merge(local, remote)
	assert.Equal(t, domain.StatusCooking, local[0].Status)
	assert.Equal(t, domain.StatusPending, remote[0].Status)
}

func TestMergeDeduplicatesRemoteLastWriteWins(t *testing.T) {
	first := order("000001", domain.StatusPending)
	second := order("000001", domain.StatusCooking)

	merged := Merge(nil, []domain.Order{first, second})
	require.Len(t, merged, 1)
	assert.Equal(t, domain.StatusCooking, merged[0].Status)
}
