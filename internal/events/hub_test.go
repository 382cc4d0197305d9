package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/sofia-praxis/dental-calendar/internal/appointments"
	"github.com/sofia-praxis/dental-calendar/pkg/logging"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.SubscriberCount() == 1 },
		2*time.Second, 10*time.Millisecond, "subscriber never registered")
	return conn
}

func TestHubBroadcastsCreated(t *testing.T) {
	h := NewHub(nil, logging.New("error", ""))
	conn := dialHub(t, h)

	h.AppointmentCreated(appointments.Appointment{
		ID:          7,
		PatientName: "Anna Schmidt",
		Date:        "2025-03-10",
		StartTime:   "09:00",
		EndTime:     "09:30",
		Status:      appointments.StatusConfirmed,
	})

	var evt AppointmentCreatedV1
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, websocket.JSON.Receive(conn, &evt))
	assert.Equal(t, TypeAppointmentCreated, evt.Type)
	assert.Equal(t, int64(7), evt.Appointment.ID)
	assert.Equal(t, "Anna Schmidt", evt.Appointment.PatientName)
}

func TestHubBroadcastsDeletedID(t *testing.T) {
	h := NewHub(nil, logging.New("error", ""))
	conn := dialHub(t, h)

	h.AppointmentDeleted(42)

	var evt AppointmentDeletedV1
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, websocket.JSON.Receive(conn, &evt))
	assert.Equal(t, TypeAppointmentDeleted, evt.Type)
	assert.Equal(t, int64(42), evt.ID)
}

func TestHubPong(t *testing.T) {
	h := NewHub(nil, logging.New("error", ""))
	conn := dialHub(t, h)

	require.NoError(t, websocket.JSON.Send(conn, map[string]string{"type": "ping"}))

	var reply map[string]string
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, websocket.JSON.Receive(conn, &reply))
	assert.Equal(t, "pong", reply["type"])
}

func TestHubRemovesDisconnectedViewer(t *testing.T) {
	h := NewHub(nil, logging.New("error", ""))
	conn := dialHub(t, h)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return h.SubscriberCount() == 0 },
		2*time.Second, 10*time.Millisecond)

	// Broadcasting with nobody connected must not panic or block.
	h.AppointmentUpdated(appointments.Appointment{ID: 1})
}

func TestHubEventJSONShape(t *testing.T) {
	raw, err := json.Marshal(AppointmentDeletedV1{Type: TypeAppointmentDeleted, ID: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"appointmentDeleted","id":3}`, string(raw))
}
