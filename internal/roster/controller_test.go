package roster

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/roster/internal/model"
	"github.com/Makepad-fr/roster/internal/store"
	"github.com/Makepad-fr/roster/internal/store/memstore"
)

// flakyKV fails reads and/or writes on demand.
type flakyKV struct {
	*memstore.Store
	failGet bool
	failSet bool
	sets    int
}

func (f *flakyKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if f.failGet {
		return nil, false, errors.New("disk on fire")
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key string, value []byte) error {
	f.sets++
	if f.failSet {
		return errors.New("disk full")
	}
	return f.Store.Set(ctx, key, value)
}

func newFlaky() *flakyKV { return &flakyKV{Store: memstore.New()} }

func newController(t *testing.T, seed ...model.Record) (*Controller, *flakyKV) {
	t.Helper()
	kv := newFlaky()
	if len(seed) > 0 {
		require.NoError(t, store.SaveRecords(context.Background(), kv, seed))
	}
	return New(context.Background(), kv, nil), kv
}

func stored(t *testing.T, kv store.KV) []model.Record {
	t.Helper()
	recs, err := store.LoadRecords(context.Background(), kv)
	require.NoError(t, err)
	return recs
}

func fields(recs []model.Record) []Draft {
	out := make([]Draft, len(recs))
	for i, r := range recs {
		out[i] = Draft{Name: r.Name, Email: r.Email, ToDo: r.ToDo}
	}
	return out
}

var (
	al = model.Record{ID: "al", Name: "Al", Email: "a@b.co", ToDo: "Read"}
	bo = model.Record{ID: "bo", Name: "Bo", Email: "b@c.co", ToDo: "Write"}
	cy = model.Record{ID: "cy", Name: "Cy", Email: "c@d.co", ToDo: "Draw"}
)

func TestNew_EmptyStorage(t *testing.T) {
	c, _ := newController(t)
	assert.Equal(t, 0, c.Len())
	assert.NoError(t, c.LoadErr())
	assert.False(t, c.Editing())
}

func TestNew_MalformedStorageRecovers(t *testing.T) {
	kv := newFlaky()
	require.NoError(t, kv.Set(context.Background(), store.StudentsKey, []byte("{not json")))
	kv.sets = 0

	c := New(context.Background(), kv, nil)
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.Err())

	var readErr *StorageReadError
	require.ErrorAs(t, c.LoadErr(), &readErr)

	require.NoError(t, c.Add(context.Background(), Draft{Name: "Al", Email: "a@b.co", ToDo: "Read"}))
	assert.Len(t, stored(t, kv), 1)
}

func TestNew_ReadFailureRecovers(t *testing.T) {
	kv := newFlaky()
	kv.failGet = true
	c := New(context.Background(), kv, nil)
	assert.Equal(t, 0, c.Len())
	var readErr *StorageReadError
	assert.ErrorAs(t, c.LoadErr(), &readErr)
}

func TestAdd_FirstRecord(t *testing.T) {
	c, kv := newController(t)
	c.SetDraft(Draft{Name: "Al", Email: "a@b.co", ToDo: "Read"})

	require.NoError(t, c.Add(context.Background(), c.Draft()))

	assert.Equal(t, []Draft{{Name: "Al", Email: "a@b.co", ToDo: "Read"}}, fields(c.Records()))
	assert.Empty(t, c.Err())
	assert.Equal(t, Draft{}, c.Draft())
	assert.NotEmpty(t, c.Records()[0].ID)
	assert.Equal(t, c.Records(), stored(t, kv))
}

func TestAdd_AppendsInOrder(t *testing.T) {
	c, _ := newController(t, al)
	for i, d := range []Draft{
		{Name: "Bo", Email: "b@c.co", ToDo: "Write"},
		{Name: "Cy", Email: "c@d.co", ToDo: "Draw"},
	} {
		before := c.Len()
		require.NoError(t, c.Add(context.Background(), d))
		require.Equal(t, before+1, c.Len(), "add %d", i)
		last, _ := c.Record(c.Len() - 1)
		assert.Equal(t, d.Email, last.Email)
	}
}

func TestAdd_DuplicateEmail(t *testing.T) {
	c, kv := newController(t, al)
	kv.sets = 0

	err := c.Add(context.Background(), Draft{Name: "Bo", Email: "a@b.co", ToDo: "Write"})

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, "Email must be unique!", c.Err())
	assert.Equal(t, []model.Record{al}, c.Records())
	assert.Zero(t, kv.sets)
}

func TestAdd_DuplicateBeatsRequired(t *testing.T) {
	c, _ := newController(t, al)
	for _, d := range []Draft{
		{Name: "", Email: "a@b.co", ToDo: "Write"},
		{Name: "Bo", Email: "a@b.co", ToDo: ""},
		{Name: "", Email: "a@b.co", ToDo: ""},
	} {
		err := c.Add(context.Background(), d)
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.Equal(t, "Email must be unique!", c.Err())
	}
	assert.Equal(t, 1, c.Len())
}

func TestAdd_InvalidEmail(t *testing.T) {
	c, kv := newController(t, al)
	kv.sets = 0
	for _, email := range []string{"", "bad-email", "a@b", "a b@c.co", "a@@b.co", "a@b.co "} {
		err := c.Add(context.Background(), Draft{Name: "Bo", Email: email, ToDo: "Write"})
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
		assert.Equal(t, "Please enter a valid email!", c.Err())
	}
	assert.Equal(t, []model.Record{al}, c.Records())
	assert.Zero(t, kv.sets)
}

func TestAdd_RequiredFields(t *testing.T) {
	c, _ := newController(t)
	err := c.Add(context.Background(), Draft{Name: "", Email: "a@b.co", ToDo: "Read"})
	assert.ErrorIs(t, err, ErrRequired)
	assert.Equal(t, "Name, email, and to-do are required!", c.Err())

	err = c.Add(context.Background(), Draft{Name: "Al", Email: "a@b.co", ToDo: ""})
	assert.ErrorIs(t, err, ErrRequired)
	assert.Equal(t, 0, c.Len())
	assert.True(t, IsValidation(err))
}

func TestAdd_FailureKeepsDraft(t *testing.T) {
	c, _ := newController(t)
	d := Draft{Name: "Al", Email: "nope", ToDo: "Read"}
	c.SetDraft(d)
	require.Error(t, c.Submit(context.Background()))
	assert.Equal(t, d, c.Draft())
}

func TestErrorClearsOnlyOnSuccess(t *testing.T) {
	c, _ := newController(t)
	c.SetDraft(Draft{Name: "Al", Email: "nope", ToDo: "Read"})
	require.Error(t, c.Submit(context.Background()))

	c.SetField(FieldEmail, "a@b.co")
	assert.Equal(t, "Please enter a valid email!", c.Err())

	require.NoError(t, c.Submit(context.Background()))
	assert.Empty(t, c.Err())
}

func TestSelectForEdit(t *testing.T) {
	c, kv := newController(t, al, bo)
	kv.sets = 0

	require.NoError(t, c.SelectForEdit(1))

	assert.Equal(t, Draft{Name: "Bo", Email: "b@c.co", ToDo: "Write"}, c.Draft())
	target, ok := c.EditTarget()
	assert.True(t, ok)
	assert.Equal(t, 1, target)
	assert.Zero(t, kv.sets)
}

func TestSelectForEdit_OutOfRange(t *testing.T) {
	c, _ := newController(t, al)
	for _, p := range []int{-1, 1, 5} {
		assert.ErrorIs(t, c.SelectForEdit(p), ErrNoRecord)
	}
	assert.False(t, c.Editing())
}

func TestUpdate_KeepsOwnEmail(t *testing.T) {
	c, kv := newController(t, al, bo)
	require.NoError(t, c.SelectForEdit(0))
	c.SetField(FieldToDo, "Read more")

	require.NoError(t, c.Submit(context.Background()))

	rec, _ := c.Record(0)
	assert.Equal(t, model.Record{ID: "al", Name: "Al", Email: "a@b.co", ToDo: "Read more"}, rec)
	assert.False(t, c.Editing())
	assert.Equal(t, Draft{}, c.Draft())
	assert.Equal(t, c.Records(), stored(t, kv))
}

func TestUpdate_InvalidEmail(t *testing.T) {
	c, _ := newController(t, al)
	require.NoError(t, c.SelectForEdit(0))

	err := c.Update(context.Background(), Draft{Name: "Al", Email: "bad-email", ToDo: "Read"}, 0)

	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, "Please enter a valid email!", c.Err())
	assert.Equal(t, []model.Record{al}, c.Records())
	assert.True(t, c.Editing())
}

func TestUpdate_EmailOfAnotherRecord(t *testing.T) {
	c, _ := newController(t, al, bo)
	require.NoError(t, c.SelectForEdit(1))

	err := c.Update(context.Background(), Draft{Name: "Bo", Email: "a@b.co", ToDo: "Write"}, 1)

	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, []model.Record{al, bo}, c.Records())
}

func TestUpdate_RequiredFields(t *testing.T) {
	c, _ := newController(t, al)
	require.NoError(t, c.SelectForEdit(0))

	err := c.Update(context.Background(), Draft{Name: "Al", Email: "a@b.co", ToDo: ""}, 0)

	assert.ErrorIs(t, err, ErrRequired)
	assert.Equal(t, []model.Record{al}, c.Records())
}

func TestUpdate_BadTarget(t *testing.T) {
	c, _ := newController(t, al)
	err := c.Update(context.Background(), Draft{Name: "Al", Email: "x@y.co", ToDo: "Read"}, 3)
	assert.ErrorIs(t, err, ErrNoRecord)
	assert.Equal(t, []model.Record{al}, c.Records())
}

func TestDelete(t *testing.T) {
	c, kv := newController(t, al, bo)

	require.NoError(t, c.Delete(context.Background(), 0))

	assert.Equal(t, []model.Record{bo}, c.Records())
	assert.Equal(t, []model.Record{bo}, stored(t, kv))
}

func TestDelete_PreservesOrder(t *testing.T) {
	all := []model.Record{al, bo, cy}
	for i := range all {
		c, _ := newController(t, all...)
		require.NoError(t, c.Delete(context.Background(), i))

		want := append(append([]model.Record{}, all[:i]...), all[i+1:]...)
		assert.Equal(t, want, c.Records(), "delete %d", i)
	}
}

func TestDelete_OutOfRange(t *testing.T) {
	c, kv := newController(t, al)
	kv.sets = 0
	assert.ErrorIs(t, c.Delete(context.Background(), 1), ErrNoRecord)
	assert.Equal(t, 1, c.Len())
	assert.Zero(t, kv.sets)
}

func TestDelete_RecordUnderEdit(t *testing.T) {
	c, _ := newController(t, al, bo)
	require.NoError(t, c.SelectForEdit(1))

	require.NoError(t, c.Delete(context.Background(), 1))

	assert.False(t, c.Editing())
	assert.Equal(t, Draft{}, c.Draft())
}

func TestDelete_BeforeRecordUnderEdit(t *testing.T) {
	c, _ := newController(t, al, bo, cy)
	require.NoError(t, c.SelectForEdit(2))

	require.NoError(t, c.Delete(context.Background(), 0))

	target, ok := c.EditTarget()
	require.True(t, ok)
	assert.Equal(t, 1, target)
	assert.Equal(t, "Cy", c.Draft().Name)

	c.SetField(FieldToDo, "Paint")
	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, []Draft{
		{Name: "Bo", Email: "b@c.co", ToDo: "Write"},
		{Name: "Cy", Email: "c@d.co", ToDo: "Paint"},
	}, fields(c.Records()))
}

func TestDelete_AfterRecordUnderEdit(t *testing.T) {
	c, _ := newController(t, al, bo, cy)
	require.NoError(t, c.SelectForEdit(0))

	require.NoError(t, c.Delete(context.Background(), 2))

	target, ok := c.EditTarget()
	require.True(t, ok)
	assert.Equal(t, 0, target)
	assert.Equal(t, "Al", c.Draft().Name)
}

func TestDelete_StoredDuplicateIDs(t *testing.T) {
	x1 := al
	x2 := bo
	x1.ID, x2.ID = "x", "x"
	c, _ := newController(t, x1, x2, cy)
	require.NoError(t, c.SelectForEdit(1))

	require.NoError(t, c.Delete(context.Background(), 2))

	target, ok := c.EditTarget()
	require.True(t, ok)
	assert.Equal(t, 1, target)

	c.SetField(FieldToDo, "Sing")
	require.NoError(t, c.Submit(context.Background()))
	assert.Equal(t, []Draft{
		{Name: "Al", Email: "a@b.co", ToDo: "Read"},
		{Name: "Bo", Email: "b@c.co", ToDo: "Sing"},
	}, fields(c.Records()))
}

func TestCancelEdit(t *testing.T) {
	c, _ := newController(t, al)
	require.NoError(t, c.SelectForEdit(0))
	require.Error(t, c.Update(context.Background(), Draft{Email: "bad"}, 0))

	c.CancelEdit()

	assert.False(t, c.Editing())
	assert.Empty(t, c.Err())
	assert.Equal(t, Draft{}, c.Draft())
}

func TestPersistFailureSetsNotice(t *testing.T) {
	c, kv := newController(t)
	kv.failSet = true

	err := c.Add(context.Background(), Draft{Name: "Al", Email: "a@b.co", ToDo: "Read"})

	var writeErr *StorageWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.False(t, IsValidation(err))
	assert.Equal(t, 1, c.Len())
	assert.Contains(t, c.Notice(), "disk full")
	assert.Empty(t, c.Err())

	kv.failSet = false
	require.NoError(t, c.Delete(context.Background(), 0))
	assert.Empty(t, c.Notice())
	assert.Empty(t, stored(t, kv))
}

func TestReloadRoundTrip(t *testing.T) {
	c, kv := newController(t)
	ctx := context.Background()
	require.NoError(t, c.Add(ctx, Draft{Name: "Al", Email: "a@b.co", ToDo: "Read"}))
	require.NoError(t, c.Add(ctx, Draft{Name: "Bo", Email: "b@c.co", ToDo: "Write"}))

	again := New(ctx, kv, nil)
	assert.Equal(t, c.Records(), again.Records())
}
