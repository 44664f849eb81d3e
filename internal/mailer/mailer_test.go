package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderExpiryAlert(t *testing.T) {
	t.Run("Expired", func(t *testing.T) {
		subject, body := renderExpiryAlert("Aspirin", "2026-08-30", AlertExpired)
		require.Equal(t, "Medicine EXPIRED: Aspirin", subject)
		require.Contains(t, body, "Medicine Expired")
		require.Contains(t, body, "#c0392b")
		require.Contains(t, body, "Aspirin")
		require.Contains(t, body, "2026-08-30")
	})

	t.Run("ExpiringSoon", func(t *testing.T) {
		subject, body := renderExpiryAlert("Insulin", "2026-09-08", AlertExpiringSoon)
		require.Equal(t, "Medicine Expiring Soon: Insulin", subject)
		require.Contains(t, body, "Medicine Expiring Soon")
		require.Contains(t, body, "#d68910")
	})

	t.Run("EscapesNameAndDate", func(t *testing.T) {
		_, body := renderExpiryAlert(`<script>alert("x")</script>`, `2026-09-08" onload="`, AlertExpired)
		require.NotContains(t, body, "<script>")
		require.Contains(t, body, "&lt;script&gt;")
		require.NotContains(t, body, `"x"`)
	})

	t.Run("UnknownKindRendersNothing", func(t *testing.T) {
		subject, body := renderExpiryAlert("Aspirin", "2026-09-08", "SOMETHING_ELSE")
		require.Empty(t, subject)
		require.Empty(t, body)
	})
}
