package main

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"screentext/models"
	"screentext/pkg/cache"
	"screentext/pkg/ocr"
	"screentext/pkg/store"
)

const maxUploadSize = 16 << 20

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/healthz", s.healthHandler)
	r.POST("/login", s.loginHandler)
	r.POST("/refresh", s.refreshHandler)
	r.POST("/revoke_refresh", s.revokeRefreshHandler)
	authGroup := r.Group("")
	authGroup.Use(s.jwtAuthMiddleware())
	authGroup.GET("/me", meHandler)
	authGroup.POST("/transcribe", s.transcribeHandler)
	authGroup.GET("/transcripts", s.listTranscriptsHandler)
	authGroup.GET("/transcripts/:id", s.getTranscriptHandler)
	authGroup.GET("/runs", s.listRunsHandler)
	authGroup.POST("/operators", s.createOperatorHandler)
}

func (s *server) jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		token, err := jwt.Parse(authHeader[7:], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		username, _ := claims["username"].(string)
		role, _ := claims["role"].(string)
		c.Set("username", username)
		c.Set("role", role)
		c.Next()
	}
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"templates":   s.deps.Table.Len(),
		"fingerprint": s.deps.Table.Fingerprint(),
		"db":          s.db != nil,
		"cache":       s.deps.Cache != nil,
	})
}

func meHandler(c *gin.Context) {
	username := c.GetString("username")
	if username == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "context missing username"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"username": username, "role": c.GetString("role")})
}

func (s *server) signAccessToken(id identity, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"username": id.Username,
		"role":     id.Role,
		"exp":      time.Now().Add(ttl).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *server) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := s.authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	tokenString, err := s.signAccessToken(id, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	resp := gin.H{"message": "login successful", "token": tokenString}
	// refresh tokens live in the database; the env operator only gets an access token
	if s.db != nil && id.ID != 0 {
		refreshToken, err := s.createAndStoreRefreshToken(id.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
			return
		}
		resp["refresh_token"] = refreshToken
	}
	c.JSON(http.StatusOK, resp)
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func (s *server) createAndStoreRefreshToken(operatorID uint) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	rt := models.RefreshToken{OperatorID: operatorID, TokenHash: hashToken(token), ExpiresAt: time.Now().Add(30 * 24 * time.Hour)}
	if err := s.db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func (s *server) findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.db.Where("token_hash = ?", hashToken(token)).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// requireDB answers 503 and returns false when the server runs without a database.
func (s *server) requireDB(c *gin.Context) bool {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return false
	}
	return true
}

// refreshHandler exchanges a refresh token for a new access token and rotates the refresh token
func (s *server) refreshHandler(c *gin.Context) {
	if !s.requireDB(c) {
		return
	}
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := s.findRefreshTokenByRaw(req.RefreshToken)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var op models.Operator
	if err := s.db.First(&op, rt.OperatorID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "operator not found"})
		return
	}
	tokenString, err := s.signAccessToken(identity{ID: op.ID, Username: op.Username, Role: op.Role}, 15*time.Minute)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	s.db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	newRT, err := s.createAndStoreRefreshToken(op.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": tokenString, "refresh_token": newRT})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func (s *server) revokeRefreshHandler(c *gin.Context) {
	if !s.requireDB(c) {
		return
	}
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := s.findRefreshTokenByRaw(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := s.db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

func (s *server) createOperatorHandler(c *gin.Context) {
	if c.GetString("role") != store.RoleAdministrator {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	if !s.requireDB(c) {
		return
	}
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	op, err := store.CreateOperator(c.Request.Context(), s.db, req.Username, req.Password, req.Role)
	if errors.Is(err, store.ErrOperatorExists) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": op.ID, "username": op.Username, "role": op.Role})
}

type transcribeResponse struct {
	File        string   `json:"file"`
	Digest      string   `json:"digest"`
	Fingerprint string   `json:"fingerprint"`
	Text        string   `json:"text"`
	Lines       []string `json:"lines"`
	Unknowns    int      `json:"unknowns"`
	Cached      bool     `json:"cached"`
}

// transcribeHandler recognizes one uploaded screenshot. With record=true and
// a database, the result is also stored in the transcript ledger.
func (s *server) transcribeHandler(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file missing"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file too large (max 16MB)"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	raw, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	f.Close()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}

	ctx := c.Request.Context()
	fp := s.deps.Table.Fingerprint()
	resp := transcribeResponse{File: file.Filename, Digest: store.DigestBytes(raw), Fingerprint: fp}
	key := cache.Key(resp.Digest, s.deps.Recognizer.Fingerprint())
	if s.deps.Cache != nil {
		if e, hit, err := s.deps.Cache.Get(ctx, key); err != nil {
			s.log.Warn("cache lookup failed", "err", err)
		} else if hit {
			resp.Text, resp.Unknowns, resp.Cached = e.Text, e.Unknowns, true
			resp.Lines = ocr.SplitLines(e.Text)
		}
	}
	if !resp.Cached {
		res, err := s.deps.Recognizer.TranscribeReader(file.Filename, bytes.NewReader(raw))
		if err != nil {
			kind := ocr.KindOf(err)
			s.log.Warn("transcription failed", "file", file.Filename, "kind", kind, "err", err)
			c.JSON(statusForKind(kind), gin.H{"error": err.Error(), "kind": kind.String()})
			return
		}
		resp.Text, resp.Lines, resp.Unknowns = res.Text, res.Lines, res.Unknowns
		if s.deps.Cache != nil {
			if err := s.deps.Cache.Set(ctx, key, cache.Entry{Text: res.Text, Unknowns: res.Unknowns}); err != nil {
				s.log.Warn("cache store failed", "err", err)
			}
		}
	}
	if resp.Lines == nil {
		resp.Lines = []string{}
	}

	if c.PostForm("record") == "true" && s.ledger != nil {
		t := &models.Transcript{
			FileName:    file.Filename,
			Digest:      resp.Digest,
			Fingerprint: fp,
			Status:      models.StatusDone,
			Text:        resp.Text,
			Lines:       len(resp.Lines),
			Unknowns:    resp.Unknowns,
			RunID:       "api",
		}
		if err := s.ledger.Record(ctx, t); err != nil {
			s.log.Warn("ledger record failed", "file", file.Filename, "err", err)
		}
	}
	c.JSON(http.StatusOK, resp)
}

func statusForKind(k ocr.Kind) int {
	switch k {
	case ocr.KindDecode, ocr.KindChannels, ocr.KindOddWidth:
		return http.StatusUnprocessableEntity
	case ocr.KindAllocation:
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// listTranscriptsHandler supports ?status=done|failed, ?unknown=1, ?limit and ?offset.
func (s *server) listTranscriptsHandler(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	f := store.Filter{
		Status:      c.Query("status"),
		UnknownOnly: c.Query("unknown") == "1" || c.Query("unknown") == "true",
		Limit:       limit,
		Offset:      max(offset, 0),
	}
	items, total, err := s.ledger.List(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (s *server) getTranscriptHandler(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	t, err := s.ledger.Get(c.Request.Context(), uint(id))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *server) listRunsHandler(c *gin.Context) {
	if s.ledger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database not configured"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	runs, err := s.ledger.Runs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, runs)
}
