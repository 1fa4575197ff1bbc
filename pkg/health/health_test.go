package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	status string
	checks map[string]string
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) body {
	t.Helper()
	b := body{checks: map[string]string{}}
	err := jx.DecodeBytes(rec.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "status":
			s, err := d.Str()
			b.status = s
			return err
		case "checks":
			return d.Obj(func(d *jx.Decoder, name string) error {
				msg, err := d.Str()
				b.checks[name] = msg
				return err
			})
		default:
			return d.Skip()
		}
	})
	require.NoError(t, err)
	return b
}

func serve(h http.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func check(name string, err error, failures int) Check {
	return Check{
		Name:             name,
		Func:             func(context.Context) error { return err },
		FailureThreshold: failures,
	}
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		runs       int
		wantStatus int
		wantBody   string
	}{
		{name: "healthy before first run", err: errors.New("down"), runs: 0, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "passing", err: nil, runs: 3, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "below threshold", err: errors.New("down"), runs: 2, wantStatus: http.StatusOK, wantBody: "ok"},
		{name: "at threshold", err: errors.New("down"), runs: 3, wantStatus: http.StatusServiceUnavailable, wantBody: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.AddLivenessCheck(check("db", tt.err, 3))
			for range tt.runs {
				h.liveness[0].run(context.Background())
			}

			rec := serve(h.LiveEndpoint)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			got := decode(t, rec)
			assert.Equal(t, tt.wantBody, got.status)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "down", got.checks["db"])
			}
		})
	}
}

func TestProbe_Recovers(t *testing.T) {
	var err error = errors.New("down")
	p := newProbe(Check{
		Name:             "flaky",
		Func:             func(context.Context) error { return err },
		FailureThreshold: 1,
		SuccessThreshold: 2,
	})

	p.run(context.Background())
	_, failed := p.failure()
	require.True(t, failed)

	err = nil
	p.run(context.Background())
	_, failed = p.failure()
	assert.True(t, failed, "one success is below the threshold")

	p.run(context.Background())
	_, failed = p.failure()
	assert.False(t, failed)
}

func TestReadyEndpoint(t *testing.T) {
	h := New()
	h.AddReadinessCheck(check("postgres", nil, 1))

	rec := serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "service is not ready", decode(t, rec).checks["_readiness"])
	assert.False(t, h.IsReady())

	h.SetReady(true)
	rec = serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.IsReady())

	h.readiness[0].Func = func(context.Context) error { return errors.New("refused") }
	h.readiness[0].run(context.Background())
	rec = serve(h.ReadyEndpoint)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "refused", decode(t, rec).checks["postgres"])
	assert.False(t, h.IsReady())
}

func TestStart_RunsChecks(t *testing.T) {
	ran := make(chan struct{}, 1)
	h := New()
	h.AddReadinessCheck(Check{Name: "tick", Func: func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}})

	h.Start(context.Background(), time.Hour)
	defer h.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("check did not run on start")
	}
	h.Stop()
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func TestPingCheck(t *testing.T) {
	require.NoError(t, PingCheck(pinger{})(context.Background()))
	require.ErrorContains(t, PingCheck(pinger{err: errors.New("refused")})(context.Background()), "refused")
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
