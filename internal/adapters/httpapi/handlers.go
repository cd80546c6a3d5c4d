package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mikey/interview-scheduler/internal/core"
	"go.uber.org/zap"
)

type startRequest struct {
	CandidateEmail string `json:"candidateEmail"`
	RecruiterEmail string `json:"recruiterEmail"`
}

type watchRequest struct {
	IntervalMs   int    `json:"intervalMs"`
	SenderFilter string `json:"senderFilter"`
}

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type receiveEmailRequest struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type createEventRequest struct {
	CalendarID string `json:"calendarId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Subject    string `json:"subject"`
	Location   string `json:"location"`
}

type eventView struct {
	Type           string    `json:"type"`
	From           string    `json:"from,omitempty"`
	To             string    `json:"to,omitempty"`
	Subject        string    `json:"subject,omitempty"`
	Body           string    `json:"body,omitempty"`
	EventID        string    `json:"eventId,omitempty"`
	RecruiterEmail string    `json:"recruiterEmail,omitempty"`
	CandidateEmail string    `json:"candidateEmail,omitempty"`
	At             time.Time `json:"at"`
}

type sessionView struct {
	ID             string      `json:"id"`
	RecruiterEmail string      `json:"recruiterEmail"`
	CandidateEmail string      `json:"candidateEmail"`
	Status         string      `json:"status"`
	History        []eventView `json:"history"`
}

type slotView struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

func toSessionView(s core.Session) sessionView {
	view := sessionView{
		ID:             s.ID,
		RecruiterEmail: s.RecruiterEmail,
		CandidateEmail: s.CandidateEmail,
		Status:         string(s.Status),
		History:        make([]eventView, 0, len(s.History)),
	}
	for _, e := range s.History {
		view.History = append(view.History, eventView{
			Type:           string(e.Kind),
			From:           e.From,
			To:             e.To,
			Subject:        e.Subject,
			Body:           e.Body,
			EventID:        e.EventID,
			RecruiterEmail: e.RecruiterEmail,
			CandidateEmail: e.CandidateEmail,
			At:             e.At,
		})
	}
	return view
}

func (s *Server) handleStart(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	session, err := s.service.StartSession(c.Request().Context(), req.CandidateEmail, req.RecruiterEmail)
	if err != nil {
		if errors.Is(err, core.ErrMissingCandidate) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		s.logger.Error("Failed to start session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to start session"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"session": toSessionView(session)})
}

func (s *Server) handleReset(c echo.Context) error {
	session := s.service.ResetSession()
	return c.JSON(http.StatusOK, map[string]interface{}{"session": toSessionView(session)})
}

func (s *Server) handleStatus(c echo.Context) error {
	session, polling, ok := s.service.Status()
	if !ok {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"session": nil,
			"polling": polling,
		})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session": toSessionView(session),
		"polling": polling,
	})
}

func (s *Server) handleWatchStart(c echo.Context) error {
	var req watchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	s.service.StartWatcher(time.Duration(req.IntervalMs)*time.Millisecond, req.SenderFilter)
	return c.JSON(http.StatusOK, map[string]string{"status": "watching"})
}

func (s *Server) handleWatchStop(c echo.Context) error {
	s.service.StopWatcher()
	return c.JSON(http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleRecruiterSlots(c echo.Context) error {
	now := time.Now().UTC()
	from := now
	to := now.AddDate(0, 0, 14)
	durationMinutes := 60

	if raw := c.QueryParam("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid start time"})
		}
		from = parsed
	}
	if raw := c.QueryParam("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid end time"})
		}
		to = parsed
	}
	if raw := c.QueryParam("durationMinutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid durationMinutes"})
		}
		durationMinutes = parsed
	}

	slots, err := s.service.AvailableSlots(c.Request().Context(), c.QueryParam("calendarId"),
		from, to, time.Duration(durationMinutes)*time.Minute)
	if err != nil {
		if errors.Is(err, core.ErrInvalidWindow) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		s.logger.Error("Failed to compute slots", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to compute slots"})
	}

	views := make([]slotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slotView{StartTime: slot.StartTime, EndTime: slot.EndTime})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"slots": views})
}

func (s *Server) handleSendEmail(c echo.Context) error {
	var req sendEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.To == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient is required"})
	}

	if err := s.service.SendMail(c.Request().Context(), req.To, req.Subject, req.Body); err != nil {
		s.logger.Error("Failed to send email", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to send email"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) handleReceiveEmail(c echo.Context) error {
	var req receiveEmailRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result := s.service.IngestDirect(c.Request().Context(), core.InboundMessage{
		From:    req.From,
		Subject: req.Subject,
		Body:    req.Body,
	})
	return c.JSON(http.StatusOK, map[string]string{"status": result.String()})
}

func (s *Server) handleCreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid startTime"})
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid endTime"})
	}
	if !end.After(start) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "endTime must be after startTime"})
	}

	eventID, err := s.service.CreateEvent(c.Request().Context(), req.CalendarID, core.EventRequest{
		Summary:   req.Subject,
		Location:  req.Location,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		s.logger.Error("Failed to create calendar event", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create calendar event"})
	}
	return c.JSON(http.StatusOK, map[string]string{"eventId": eventID})
}
