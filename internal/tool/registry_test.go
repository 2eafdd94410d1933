package tool

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoOp(name string, params ...Param) Operation {
	return Operation{
		Name:        name,
		Description: "echo tool",
		Params:      params,
		Call: func(_ context.Context, a Args) (any, error) {
			return a.Map(), nil
		},
	}
}

func TestRegistry_DispatchAndLookup(t *testing.T) {
	reg, err := NewRegistry([]Operation{echoOp("echo", required("msg", "message"))})
	require.NoError(t, err)

	assert.True(t, reg.Has("echo"))
	assert.False(t, reg.Has("missing"))
	assert.Equal(t, 1, reg.Len())

	res, err := reg.Dispatch(context.Background(), "echo", map[string]any{"msg": "hello"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Equal(t, "{\n  \"msg\": \"hello\"\n}", res.Text())
}

func TestRegistry_DispatchUnknown(t *testing.T) {
	svc := &fakeService{}
	reg := newTestRegistry(t, svc)

	_, err := reg.Dispatch(context.Background(), "nope", map[string]any{"id": "1"})
	require.ErrorIs(t, err, ErrUnknownOperation)

	var unknown *UnknownOperationError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "nope", unknown.Name)
	assert.Empty(t, svc.Calls())
}

func TestRegistry_LookupIsExact(t *testing.T) {
	reg := newTestRegistry(t, &fakeService{})
	for _, name := range []string{"GET_AGENT", "get_agent ", "getagent"} {
		_, err := reg.Dispatch(context.Background(), name, map[string]any{"id": "1"})
		assert.ErrorIs(t, err, ErrUnknownOperation, name)
	}
}

func TestRegistry_RemoteErrorUnchanged(t *testing.T) {
	remote := errors.New("chatvolt: 401 unauthorized")
	reg := newTestRegistry(t, &fakeService{err: remote})

	_, err := reg.Dispatch(context.Background(), "get_agent", map[string]any{"id": "a1"})
	require.Same(t, remote, err)
	assert.Equal(t, KindRemote, ErrorKind(err))
}

func TestRegistry_CallFoldsErrors(t *testing.T) {
	reg := newTestRegistry(t, &fakeService{})

	res := reg.Call(context.Background(), "nope", nil)
	assert.True(t, res.IsError)
	assert.Equal(t, "Unknown tool: nope", res.Text())

	res = reg.Call(context.Background(), "get_agent", map[string]any{})
	assert.True(t, res.IsError)
	assert.Equal(t, "'id' is a required argument.", res.Text())

	res = reg.Call(context.Background(), "get_agent", map[string]any{"id": "a1"})
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"id":"x"}`, res.Text())
}

func TestNewRegistry_Rejects(t *testing.T) {
	cases := map[string][]Operation{
		"empty name": {echoOp("")},
		"duplicate":  {echoOp("a"), echoOp("a")},
		"no handler": {{Name: "nil"}},
		"bad schema": {echoOp("bad", Param{Name: "x", Kind: "strng"})},
	}
	for name, ops := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(ops)
			require.Error(t, err)
		})
	}
}

func TestRegistry_ListMatchesDescriptors(t *testing.T) {
	reg := newTestRegistry(t, &fakeService{})

	list := reg.List()
	require.Len(t, list, reg.Len())
	for _, d := range list {
		got, ok := reg.Descriptor(d.Name)
		require.True(t, ok)
		assert.Equal(t, d, got)
		assert.Equal(t, "object", d.InputSchema["type"])
		assert.NotEmpty(t, d.Description)
	}

	d, ok := reg.Descriptor("create_datasource")
	require.True(t, ok)
	assert.Equal(t, []string{"datastoreId", "name", "text"}, d.InputSchema["required"])
}

func TestRegistry_Observers(t *testing.T) {
	var (
		mu      sync.Mutex
		records []CallRecord
	)
	obs := ObserverFunc(func(_ context.Context, rec CallRecord) {
		mu.Lock()
		defer mu.Unlock()
		records = append(records, rec)
	})
	reg := newTestRegistry(t, &fakeService{}, WithObserver(obs))

	_, _ = reg.Dispatch(context.Background(), "get_agent", map[string]any{"id": "a1"})
	_, _ = reg.Dispatch(context.Background(), "get_agent", map[string]any{})
	_, _ = reg.Dispatch(context.Background(), "nope", nil)

	require.Len(t, records, 3)
	assert.Equal(t, StatusOK, records[0].Status)
	assert.Empty(t, records[0].Kind)
	assert.Equal(t, StatusError, records[1].Status)
	assert.Equal(t, KindMissingArgument, records[1].Kind)
	assert.Equal(t, KindUnknownOperation, records[2].Kind)
	assert.Equal(t, "nope", records[2].Operation)
}

func TestRegistry_ConcurrentDispatch(t *testing.T) {
	svc := &fakeService{}
	reg := newTestRegistry(t, svc)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := reg.Call(context.Background(), "get_agent", map[string]any{"id": "a1"})
			assert.False(t, res.IsError)
		}()
	}
	wg.Wait()
	assert.Len(t, svc.Calls(), 50)
}
