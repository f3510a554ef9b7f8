// Package apitest runs an in-memory chat backend for tests.
package apitest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// DefaultTitle is given to sessions created without a query.
	DefaultTitle = "New Chat"

	naiveLayout = "2006-01-02T15:04:05.999999"
	emailKey    = "apitest_email"
)

type user struct {
	username string
	email    string
	password string
}

type session struct {
	id        int64
	email     string
	title     string
	createdAt time.Time
}

type message struct {
	id        int64
	sessionID int64
	email     string
	query     string
	response  string
	timestamp time.Time
}

type failure struct {
	status int
	detail string
}

// Upload records a received file.
type Upload struct {
	Email    string
	Filename string
	Size     int64
}

// Server is a fake backend speaking the same JSON as the real one.
type Server struct {
	URL string

	mu       sync.Mutex
	server   *httptest.Server
	clock    time.Time
	nextID   int64
	users    map[string]*user
	tokens   map[string]string
	sessions map[int64]*session
	messages []*message
	uploads  []Upload
	calls    map[string]int
	failures map[string][]failure
	reply    func(query string) string
	queued   []string
}

// New starts a server and stops it when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := &Server{
		clock:    time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		users:    map[string]*user{},
		tokens:   map[string]string{},
		sessions: map[int64]*session{},
		calls:    map[string]int{},
		failures: map[string][]failure{},
		reply:    func(query string) string { return "Echo: " + query },
	}
	s.server = httptest.NewServer(s.router())
	s.URL = s.server.URL
	t.Cleanup(s.server.Close)
	return s
}

func (s *Server) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.record())
	router.POST("/signup", s.signup)
	router.POST("/login", s.login)

	authed := router.Group("/", s.authenticate())
	authed.POST("/upload-pdf", s.uploadPDF)
	authed.POST("/chat", s.chat)
	authed.GET("/chat-sessions", s.listSessions)
	authed.POST("/chat-sessions", s.createSession)
	authed.DELETE("/chat-sessions/:id", s.deleteSession)
	authed.GET("/chat-sessions/:id/messages", s.listSessionMessages)
	authed.GET("/chat-history", s.listHistory)
	authed.DELETE("/chat-history/:id", s.deleteHistory)
	return router
}

// AddUser registers a user directly.
func (s *Server) AddUser(username, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &user{username: username, email: email, password: password}
}

// IssueToken returns a valid token for an existing user.
func (s *Server) IssueToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueToken(email)
}

// QueueToken makes the next login or signup issue token.
func (s *Server) QueueToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queued = append(s.queued, token)
}

// ExpireTokens invalidates every issued token.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = map[string]string{}
}

// AddSession creates a session for email and returns its id.
func (s *Server) AddSession(email, title string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addSession(email, title).id
}

// AddMessage stores a query/response pair in a session.
func (s *Server) AddMessage(sessionID int64, query, response string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.sessions[sessionID]
	return s.addMessage(sess, query, response).id
}

// SessionIDs returns the ids of the sessions owned by email, newest first.
func (s *Server) SessionIDs(email string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []int64
	for _, sess := range s.userSessions(email) {
		ids = append(ids, sess.id)
	}
	return ids
}

// Uploads returns the received files.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// SetReply replaces the answer generator.
func (s *Server) SetReply(reply func(query string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reply = reply
}

// Fail makes the next call to route answer status with detail.
// Routes are written as method and gin path, e.g. "DELETE /chat-sessions/:id".
// An empty detail sends an empty body.
func (s *Server) Fail(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, detail: detail})
}

// Calls returns how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls returns how many requests reached the server.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.Request.Method + " " + c.FullPath()
		s.mu.Lock()
		s.calls[route]++
		var f *failure
		if queued := s.failures[route]; len(queued) > 0 {
			f = &queued[0]
			s.failures[route] = queued[1:]
		}
		s.mu.Unlock()

		if f != nil {
			if f.detail == "" {
				c.AbortWithStatus(f.status)
				return
			}
			c.AbortWithStatusJSON(f.status, gin.H{"detail": f.detail})
			return
		}
		c.Next()
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		s.mu.Lock()
		email, ok := s.tokens[strings.TrimPrefix(header, "Bearer ")]
		s.mu.Unlock()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Set(emailKey, email)
		c.Next()
	}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// missingFields answers like FastAPI request validation.
func missingFields(c *gin.Context, fields ...string) {
	detail := make([]gin.H, 0, len(fields))
	for _, field := range fields {
		detail = append(detail, gin.H{
			"type": "missing",
			"loc":  []string{"body", field},
			"msg":  fmt.Sprintf("Field required: %s", field),
		})
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": detail})
}

func (s *Server) signup(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		missingFields(c, "username", "email", "password")
		return
	}
	var missing []string
	for field, value := range map[string]string{"username": req.Username, "email": req.Email, "password": req.Password} {
		if value == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		missingFields(c, missing...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[req.Email]; ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Email already registered"})
		return
	}
	for _, u := range s.users {
		if u.username == req.Username {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already taken"})
			return
		}
	}
	s.users[req.Email] = &user{username: req.Username, email: req.Email, password: req.Password}
	c.JSON(http.StatusOK, gin.H{"access_token": s.issueToken(req.Email), "token_type": "bearer"})
}

func (s *Server) login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		missingFields(c, "email", "password")
		return
	}
	var missing []string
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		missingFields(c, missing...)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[req.Email]
	if !ok || u.password != req.Password {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Incorrect email or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": s.issueToken(req.Email), "token_type": "bearer"})
}

func (s *Server) uploadPDF(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		missingFields(c, "file")
		return
	}
	if !strings.HasSuffix(file.Filename, ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Only PDF files are accepted."})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = append(s.uploads, Upload{Email: c.GetString(emailKey), Filename: file.Filename, Size: file.Size})
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s indexed (%d bytes).", file.Filename, file.Size)})
}

func (s *Server) chat(c *gin.Context) {
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		missingFields(c, "query")
		return
	}
	email := c.GetString(emailKey)

	s.mu.Lock()
	defer s.mu.Unlock()
	var active *session
	if sessions := s.userSessions(email); len(sessions) > 0 {
		active = sessions[0]
	} else {
		title := req.Query
		if len(title) > 50 {
			title = title[:50] + "..."
		}
		active = s.addSession(email, title)
	}
	response := s.reply(req.Query)
	s.addMessage(active, req.Query, response)
	if active.title == DefaultTitle {
		active.title = summarize(req.Query)
	}
	c.JSON(http.StatusOK, gin.H{
		"response":      response,
		"session_id":    active.id,
		"session_title": active.title,
	})
}

func (s *Server) listSessions(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []gin.H{}
	for _, sess := range s.userSessions(c.GetString(emailKey)) {
		result = append(result, sessionJSON(sess))
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) createSession(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.JSON(http.StatusOK, sessionJSON(s.addSession(c.GetString(emailKey), DefaultTitle)))
}

func (s *Server) deleteSession(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.ownedSession(c)
	if !ok {
		return
	}
	delete(s.sessions, sess.id)
	kept := s.messages[:0]
	for _, m := range s.messages {
		if m.sessionID != sess.id {
			kept = append(kept, m)
		}
	}
	s.messages = kept
	c.JSON(http.StatusOK, gin.H{"message": "Session deleted"})
}

func (s *Server) listSessionMessages(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.ownedSession(c)
	if !ok {
		return
	}
	result := []gin.H{}
	for _, m := range s.messages {
		if m.sessionID == sess.id {
			result = append(result, messageJSON(m))
		}
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listHistory(c *gin.Context) {
	email := c.GetString(emailKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []gin.H{}
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].email == email {
			result = append(result, messageJSON(s.messages[i]))
		}
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) deleteHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"type": "int_parsing", "loc": []string{"path", "id"}, "msg": "Input should be a valid integer"}}})
		return
	}
	email := c.GetString(emailKey)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.messages {
		if m.id == id && m.email == email {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			c.JSON(http.StatusOK, gin.H{"message": "Chat deleted"})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Chat not found"})
}

// ownedSession resolves the :id parameter, answering the error itself when it fails.
func (s *Server) ownedSession(c *gin.Context) (*session, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"type": "int_parsing", "loc": []string{"path", "id"}, "msg": "Input should be a valid integer"}}})
		return nil, false
	}
	sess, ok := s.sessions[id]
	if !ok || sess.email != c.GetString(emailKey) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Session not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) issueToken(email string) string {
	token := uuid.NewString()
	if len(s.queued) > 0 {
		token, s.queued = s.queued[0], s.queued[1:]
	}
	s.tokens[token] = email
	return token
}

func (s *Server) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func (s *Server) addSession(email, title string) *session {
	s.nextID++
	sess := &session{id: s.nextID, email: email, title: title, createdAt: s.tick()}
	s.sessions[sess.id] = sess
	return sess
}

func (s *Server) addMessage(sess *session, query, response string) *message {
	s.nextID++
	m := &message{
		id:        s.nextID,
		sessionID: sess.id,
		email:     sess.email,
		query:     query,
		response:  response,
		timestamp: s.tick(),
	}
	s.messages = append(s.messages, m)
	return m
}

// userSessions returns the sessions of email, newest first.
func (s *Server) userSessions(email string) []*session {
	var result []*session
	for _, sess := range s.sessions {
		if sess.email == email {
			result = append(result, sess)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].createdAt.After(result[j].createdAt) })
	return result
}

func summarize(query string) string {
	words := strings.Fields(query)
	if len(words) > 5 {
		words = words[:5]
	}
	if len(words) == 0 {
		return DefaultTitle
	}
	return strings.Join(words, " ")
}

func sessionJSON(sess *session) gin.H {
	return gin.H{"id": sess.id, "title": sess.title, "created_at": sess.createdAt.Format(naiveLayout)}
}

func messageJSON(m *message) gin.H {
	return gin.H{"id": m.id, "message": m.query, "response": m.response, "timestamp": m.timestamp.Format(naiveLayout)}
}
