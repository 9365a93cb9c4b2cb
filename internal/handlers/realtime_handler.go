package handlers

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"dinnerboard/internal/models"
	"dinnerboard/internal/realtime"
	"dinnerboard/internal/security"
	"dinnerboard/internal/service"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// RealtimeHandler exposes the live-update surface: a token endpoint for
// authenticated clients and the WebSocket that streams full snapshots of the
// roster, the weekly attendance projection and the notes.
type RealtimeHandler struct {
	tokenIssuer       *security.TokenIssuer
	statusMonitor     *realtime.StatusMonitor
	rosterService     *service.RosterService
	attendanceService *service.AttendanceService
	noteService       *service.NoteService
	upgrader          websocket.Upgrader
}

// NewRealtimeHandler creates a new realtime handler
func NewRealtimeHandler(
	tokenIssuer *security.TokenIssuer,
	statusMonitor *realtime.StatusMonitor,
	rosterService *service.RosterService,
	attendanceService *service.AttendanceService,
	noteService *service.NoteService,
) *RealtimeHandler {
	return &RealtimeHandler{
		tokenIssuer:       tokenIssuer,
		statusMonitor:     statusMonitor,
		rosterService:     rosterService,
		attendanceService: attendanceService,
		noteService:       noteService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// IssueToken mints a short-lived token the client presents when opening its
// WebSocket. Requires an authenticated session.
func (h *RealtimeHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	familyID := GetFamilyFromContext(r.Context())

	token, err := h.tokenIssuer.Issue(user.ID, familyID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Status reports backend reachability as probed by the status monitor
func (h *RealtimeHandler) Status(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]bool{"connected": h.statusMonitor.Connected()})
}

// frame is one WebSocket message: a full snapshot of one topic
type frame struct {
	Topic string      `json:"topic"`
	Data  interface{} `json:"data"`
}

// ServeWS upgrades the connection and streams snapshots until the client
// disconnects. Every topic delivers its current snapshot immediately after
// the upgrade and again after each change.
func (h *RealtimeHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	_, familyID, err := h.tokenIssuer.Validate(r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid realtime token")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(topic string, data interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(frame{Topic: topic, Data: data})
	}

	closed := make(chan struct{})
	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { close(closed) }) }

	unsubMembers := h.rosterService.SubscribeMembers(familyID, func(members []models.Member) {
		if err := send(string(realtime.TopicMembers), members); err != nil {
			closeConn()
		}
	})
	defer unsubMembers()

	unsubAttendance := h.attendanceService.SubscribeWeekly(familyID, func(snapshot models.WeeklyAttendance) {
		if err := send(string(realtime.TopicAttendance), snapshot); err != nil {
			closeConn()
		}
	})
	defer unsubAttendance()

	unsubNotes := h.noteService.SubscribeNotes(familyID, func(notes []models.Note) {
		if err := send(string(realtime.TopicNotes), notes); err != nil {
			closeConn()
		}
	})
	defer unsubNotes()

	unsubStatus := h.statusMonitor.Subscribe(func(connected bool) {
		if err := send("status", map[string]bool{"connected": connected}); err != nil {
			closeConn()
		}
	})
	defer unsubStatus()

	// read loop: the client sends nothing meaningful, but reads surface
	// closes and feed the pong handler
	go func() {
		defer closeConn()
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(wsPingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-pingTicker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
