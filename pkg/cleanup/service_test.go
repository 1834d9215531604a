package cleanup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/models"
	"github.com/workflow-use/suitectl/pkg/session"
)

func retentionConfig(maxAge, interval time.Duration) *config.RetentionConfig {
	return &config.RetentionConfig{
		Enabled:       true,
		MaxAge:        maxAge,
		SweepInterval: interval,
	}
}

func TestService_RemovesStaleTerminalSessions(t *testing.T) {
	sessions := session.NewManager()
	sess := sessions.Create()
	sess.SetStatus(models.StatusCompleted)
	sess.UpdatedAt = time.Now().Add(-2 * time.Hour)

	svc := NewService(retentionConfig(time.Hour, time.Hour), sessions)
	svc.sweepOnce()

	_, err := sessions.Get(sess.ID)
	assert.True(t, errors.Is(err, session.ErrNotFound))
}

func TestService_PreservesRecentTerminalSessions(t *testing.T) {
	sessions := session.NewManager()
	sess := sessions.Create()
	sess.SetStatus(models.StatusCancelled)

	svc := NewService(retentionConfig(time.Hour, time.Hour), sessions)
	svc.sweepOnce()

	_, err := sessions.Get(sess.ID)
	assert.NoError(t, err)
}

func TestService_PreservesStaleActiveSessions(t *testing.T) {
	sessions := session.NewManager()
	sess := sessions.Create()
	sess.UpdatedAt = time.Now().Add(-48 * time.Hour)

	svc := NewService(retentionConfig(time.Hour, time.Hour), sessions)
	svc.sweepOnce()

	_, err := sessions.Get(sess.ID)
	assert.NoError(t, err)
}

func TestService_SweepLoopRemovesSessions(t *testing.T) {
	sessions := session.NewManager()
	sess := sessions.Create()
	sess.SetStatus(models.StatusError)
	sess.UpdatedAt = time.Now().Add(-time.Minute)

	svc := NewService(retentionConfig(time.Millisecond, 10*time.Millisecond), sessions)
	svc.Start(context.Background())
	defer svc.Stop()

	require.Eventually(t, func() bool {
		_, err := sessions.Get(sess.ID)
		return errors.Is(err, session.ErrNotFound)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestService_DisabledDoesNotStart(t *testing.T) {
	sessions := session.NewManager()
	cfg := &config.RetentionConfig{Enabled: false}

	svc := NewService(cfg, sessions)
	svc.Start(context.Background())

	assert.Nil(t, svc.cancel)

	// Stop on a never-started sweeper returns immediately.
	svc.Stop()
}

func TestService_StopIsIdempotent(t *testing.T) {
	sessions := session.NewManager()

	svc := NewService(retentionConfig(time.Hour, time.Hour), sessions)
	svc.Start(context.Background())

	svc.Stop()
	svc.Stop()
}
