package grid

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrijs2005/leadgrid/internal/client/models"
	"github.com/dmitrijs2005/leadgrid/internal/client/repositories/blocks"
	"github.com/dmitrijs2005/leadgrid/internal/logging"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultBlockSize matches the grid's cache block size.
const DefaultBlockSize = 20

// Fetcher serves one row window. *DataSource satisfies it.
type Fetcher interface {
	GetRows(ctx context.Context, req Request) (Result, error)
}

// BlockStore keeps snapshots of loaded blocks. *blocks.SQLiteRepository
// satisfies it.
type BlockStore interface {
	Put(ctx context.Context, b blocks.Block) error
	Get(ctx context.Context, queryKey string, index int) (*blocks.Block, error)
	Clear(ctx context.Context) error
}

// Observer is told whether a block came from the cache.
type Observer interface {
	BlockHit()
	BlockMiss()
}

type Option func(*RowModel)

func WithBlockSize(n int) Option {
	return func(m *RowModel) {
		if n > 0 {
			m.blockSize = n
		}
	}
}

func WithBlockStore(s BlockStore) Option {
	return func(m *RowModel) { m.store = s }
}

func WithObserver(o Observer) Option {
	return func(m *RowModel) { m.observer = o }
}

func WithLogger(l logging.Logger) Option {
	return func(m *RowModel) { m.log = l }
}

// RowModel caches row blocks on top of a Fetcher.
type RowModel struct {
	source    Fetcher
	blockSize int
	store     BlockStore
	observer  Observer
	log       logging.Logger
	group     singleflight.Group

	mu      sync.Mutex
	filters FilterModel
	gen     uint64
	blocks  map[int][]models.Lead
	lastRow int
	visible *[2]int
}

func NewRowModel(source Fetcher, opts ...Option) *RowModel {
	m := &RowModel{
		source:    source,
		blockSize: DefaultBlockSize,
		log:       logging.Discard(),
		filters:   FilterModel{},
		blocks:    make(map[int][]models.Lead),
		lastRow:   UnknownLastRow,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *RowModel) BlockSize() int { return m.blockSize }

// Filters returns a copy of the active filter model.
func (m *RowModel) Filters() FilterModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filters.Clone()
}

// SetFilters replaces the filter model and drops every cached block.
func (m *RowModel) SetFilters(fm FilterModel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = fm.Clone()
	m.purgeLocked()
}

// RowCount returns the total number of rows once the last block has been
// seen. Until then it returns the number of rows known so far and false.
func (m *RowModel) RowCount() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastRow != UnknownLastRow {
		return m.lastRow, true
	}
	n := 0
	for i, rows := range m.blocks {
		if end := i*m.blockSize + len(rows); end > n {
			n = end
		}
	}
	return n, false
}

func (m *RowModel) purgeLocked() {
	m.gen++
	m.blocks = make(map[int][]models.Lead)
	m.lastRow = UnknownLastRow
}

func (m *RowModel) queryKey(fm FilterModel) string {
	return "bs=" + strconv.Itoa(m.blockSize) + "|" + fm.Key()
}

// Block returns the rows of block i, loading it if it is not cached.
func (m *RowModel) Block(ctx context.Context, i int) ([]models.Lead, error) {
	if i < 0 {
		return nil, fmt.Errorf("%w: block %d", ErrInvalidWindow, i)
	}

	m.mu.Lock()
	if rows, ok := m.blocks[i]; ok {
		m.mu.Unlock()
		m.observe(true)
		return rows, nil
	}
	if m.lastRow != UnknownLastRow && i*m.blockSize >= m.lastRow {
		m.mu.Unlock()
		return []models.Lead{}, nil
	}
	gen, filters := m.gen, m.filters
	m.mu.Unlock()

	m.observe(false)

	// The shared load must outlive any single waiter; each waiter gives up
	// on its own context instead.
	key := strconv.FormatUint(gen, 10) + "/" + strconv.Itoa(i)
	ch := m.group.DoChan(key, func() (any, error) {
		return m.load(context.WithoutCancel(ctx), gen, filters, i)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]models.Lead), nil
	}
}

func (m *RowModel) load(ctx context.Context, gen uint64, filters FilterModel, i int) ([]models.Lead, error) {
	req := Request{StartRow: i * m.blockSize, EndRow: (i + 1) * m.blockSize, Filters: filters}
	res, err := m.source.GetRows(ctx, req)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	current := m.gen == gen
	if current {
		m.blocks[i] = res.Rows
		if res.LastRow != UnknownLastRow {
			m.lastRow = res.LastRow
		}
	}
	m.mu.Unlock()

	if !current {
		m.log.Debug(ctx, "discarding stale block", "block", i)
		return res.Rows, nil
	}

	if m.store != nil {
		b := blocks.Block{QueryKey: m.queryKey(filters), Index: i, Rows: res.Rows, LastRow: res.LastRow}
		if err := m.store.Put(ctx, b); err != nil {
			m.log.Warn(ctx, "failed to snapshot block", "block", i, "error", err)
		}
	}
	return res.Rows, nil
}

func (m *RowModel) observe(hit bool) {
	if m.observer == nil {
		return
	}
	if hit {
		m.observer.BlockHit()
	} else {
		m.observer.BlockMiss()
	}
}

// Window returns rows [start, end), loading the blocks that cover it
// concurrently. The result is shorter than requested at the end of the
// result set. The window is remembered as the visible one for Refresh.
func (m *RowModel) Window(ctx context.Context, start, end int) ([]models.Lead, error) {
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: [%d, %d)", ErrInvalidWindow, start, end)
	}

	m.mu.Lock()
	m.visible = &[2]int{start, end}
	m.mu.Unlock()

	first, last := start/m.blockSize, (end-1)/m.blockSize
	loaded := make([][]models.Lead, last-first+1)

	g, gctx := errgroup.WithContext(ctx)
	for i := first; i <= last; i++ {
		g.Go(func() error {
			rows, err := m.Block(gctx, i)
			if err != nil {
				return err
			}
			loaded[i-first] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return m.cut(loaded, first, start, end), nil
}

func (m *RowModel) cut(loaded [][]models.Lead, first, start, end int) []models.Lead {
	out := make([]models.Lead, 0, end-start)
	for n, rows := range loaded {
		base := (first + n) * m.blockSize
		for j, r := range rows {
			if idx := base + j; idx >= start && idx < end {
				out = append(out, r)
			}
		}
		if len(rows) < m.blockSize {
			break
		}
	}
	return out
}

// Refresh drops every cached block and snapshot, then reloads the visible
// window. It returns nil rows when no window has been shown yet.
func (m *RowModel) Refresh(ctx context.Context) ([]models.Lead, error) {
	m.mu.Lock()
	m.purgeLocked()
	visible := m.visible
	m.mu.Unlock()

	if m.store != nil {
		if err := m.store.Clear(ctx); err != nil {
			m.log.Warn(ctx, "failed to clear block snapshots", "error", err)
		}
	}

	if visible == nil {
		return nil, nil
	}
	return m.Window(ctx, visible[0], visible[1])
}

// Reset forgets the filters, the visible window, every cached block and
// every stored snapshot. It is used when the signed-in user goes away.
func (m *RowModel) Reset(ctx context.Context) error {
	m.mu.Lock()
	m.purgeLocked()
	m.filters = FilterModel{}
	m.visible = nil
	m.mu.Unlock()

	if m.store == nil {
		return nil
	}
	return m.store.Clear(ctx)
}

// Snapshot returns rows [start, end) from stored snapshots taken with the
// current filters, and the time of the oldest block used.
func (m *RowModel) Snapshot(ctx context.Context, start, end int) ([]models.Lead, time.Time, error) {
	if start < 0 || end <= start {
		return nil, time.Time{}, fmt.Errorf("%w: [%d, %d)", ErrInvalidWindow, start, end)
	}
	if m.store == nil {
		return nil, time.Time{}, ErrNoSnapshot
	}

	key := m.queryKey(m.Filters())
	first, last := start/m.blockSize, (end-1)/m.blockSize
	loaded := make([][]models.Lead, 0, last-first+1)
	var oldest time.Time

	for i := first; i <= last; i++ {
		b, err := m.store.Get(ctx, key, i)
		if err != nil {
			return nil, time.Time{}, err
		}
		if b == nil {
			break
		}
		loaded = append(loaded, b.Rows)
		if oldest.IsZero() || b.FetchedAt.Before(oldest) {
			oldest = b.FetchedAt
		}
		if b.LastRow != UnknownLastRow {
			break
		}
	}
	if len(loaded) == 0 {
		return nil, time.Time{}, ErrNoSnapshot
	}
	return m.cut(loaded, first, start, end), oldest, nil
}
