package handler

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"placements/internal/audit"
	"placements/internal/auth"
	"placements/internal/cloudinary"
	"placements/internal/config"
	"placements/internal/drives"
	"placements/internal/identity"
)

// Handler binds the REST surface to the identity, drives and audit services.
type Handler struct {
	cfg      config.App
	identity *identity.Service
	drives   *drives.Service
	audits   audit.Store
	cloud    *cloudinary.Client // nil when Cloudinary is not configured
}

// New creates a handler.
func New(cfg config.App, ident *identity.Service, svc *drives.Service, audits audit.Store, cloud *cloudinary.Client) *Handler {
	return &Handler{cfg: cfg, identity: ident, drives: svc, audits: audits, cloud: cloud}
}

// Register wires all /api routes onto the engine. Reads require any
// authenticated principal; mutations require the admin role.
func (h *Handler) Register(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/auth/admin/login", h.AdminLogin)
	api.POST("/auth/student/login", h.StudentLogin)
	api.GET("/auth/me", h.Me)
	api.POST("/auth/logout", h.Logout)

	authed := api.Group("", auth.Required(h.cfg.JWTSigningKey, h.cfg.JWTIssuer))
	authed.GET("/upcoming", h.ListUpcoming)
	authed.GET("/ongoing", h.ListOngoing)
	authed.GET("/completed", h.ListCompleted)

	admin := authed.Group("", auth.AdminOnly())
	admin.POST("/upcoming", h.CreateUpcoming)
	admin.PUT("/upcoming/:id", h.UpdateUpcoming)
	admin.DELETE("/upcoming/:id", h.DeleteUpcoming)
	admin.POST("/ongoing", h.CreateOngoing)
	admin.PUT("/ongoing/:id", h.UpdateOngoing)
	admin.DELETE("/ongoing/:id", h.DeleteOngoing)
	admin.POST("/completed", h.CreateCompleted)
	admin.PUT("/completed/:id", h.UpdateCompleted)
	admin.DELETE("/completed/:id", h.DeleteCompleted)
	admin.GET("/audit", h.ListAudit)
	admin.POST("/uploads", h.Upload)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})
}

// ---------- Auth ----------

// AdminLogin verifies credentials and issues an admin session token.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	admin, err := h.identity.AuthenticateAdmin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.internalError(c, err)
		return
	}

	token, err := auth.Issue(auth.NewAdminClaims(admin.ID, admin.Name, admin.Email), h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.SessionTTL)
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
			"role":  auth.RoleAdmin,
		},
		"token": token,
	})
}

// StudentLogin logs a session row and issues a student token. Always succeeds
// given a non-empty name and branch.
func (h *Handler) StudentLogin(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Branch      string `json:"branch"`
		GoogleEmail string `json:"googleEmail"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Branch) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and branch are required"})
		return
	}

	sess, err := h.identity.StartStudentSession(c.Request.Context(), req.Name, req.Branch, req.GoogleEmail)
	if err != nil {
		h.internalError(c, err)
		return
	}

	token, err := auth.Issue(auth.NewStudentClaims(sess.ID, sess.Name, sess.Branch), h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.SessionTTL)
	if err != nil {
		h.internalError(c, err)
		return
	}
	h.setSessionCookie(c, token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user": gin.H{
			"id":     sess.ID,
			"name":   sess.Name,
			"branch": sess.Branch,
			"role":   auth.RoleStudent,
		},
		"token": token,
	})
}

// Me returns the principal decoded from the cookie or bearer header. The
// token is the sole source; nothing is re-fetched from the store.
func (h *Handler) Me(c *gin.Context) {
	tok := auth.TokenFromRequest(c)
	if tok == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	claims, err := auth.Parse(tok, h.cfg.JWTSigningKey, h.cfg.JWTIssuer)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	user := gin.H{"id": claims.Subject, "name": claims.Name, "role": claims.Role}
	if claims.Email != "" {
		user["email"] = claims.Email
	}
	if claims.Branch != "" {
		user["branch"] = claims.Branch
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session cookie. Tokens are not server-side revocable;
// expiry is the only other termination mechanism.
func (h *Handler) Logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// ---------- Upcoming companies ----------

func (h *Handler) ListUpcoming(c *gin.Context) {
	records, err := h.drives.ListUpcoming(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if records == nil {
		records = []drives.UpcomingCompany{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) CreateUpcoming(c *gin.Context) {
	var in drives.UpcomingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	claims, _ := auth.Principal(c)
	rec, err := h.drives.CreateUpcoming(c.Request.Context(), claims.Subject, in)
	if err != nil {
		h.writeError(c, err, "Company not found")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateUpcoming(c *gin.Context) {
	var patch drives.UpcomingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	claims, _ := auth.Principal(c)
	rec, err := h.drives.UpdateUpcoming(c.Request.Context(), claims.Subject, c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err, "Company not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteUpcoming(c *gin.Context) {
	claims, _ := auth.Principal(c)
	if err := h.drives.DeleteUpcoming(c.Request.Context(), claims.Subject, c.Param("id")); err != nil {
		h.writeError(c, err, "Company not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Company deleted successfully"})
}

// ---------- Ongoing drives ----------

func (h *Handler) ListOngoing(c *gin.Context) {
	records, err := h.drives.ListOngoing(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if records == nil {
		records = []drives.OngoingDrive{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) CreateOngoing(c *gin.Context) {
	var in drives.OngoingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	claims, _ := auth.Principal(c)
	rec, err := h.drives.CreateOngoing(c.Request.Context(), claims.Subject, in)
	if err != nil {
		h.writeError(c, err, "Drive not found")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateOngoing(c *gin.Context) {
	var patch drives.OngoingPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	claims, _ := auth.Principal(c)
	rec, err := h.drives.UpdateOngoing(c.Request.Context(), claims.Subject, c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err, "Drive not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteOngoing(c *gin.Context) {
	claims, _ := auth.Principal(c)
	if err := h.drives.DeleteOngoing(c.Request.Context(), claims.Subject, c.Param("id")); err != nil {
		h.writeError(c, err, "Drive not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Drive deleted successfully"})
}

// ---------- Completed drives ----------

func (h *Handler) ListCompleted(c *gin.Context) {
	records, err := h.drives.ListCompleted(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}
	if records == nil {
		records = []drives.CompletedDrive{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) CreateCompleted(c *gin.Context) {
	var in drives.CompletedInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	claims, _ := auth.Principal(c)
	rec, err := h.drives.CreateCompleted(c.Request.Context(), claims.Subject, in)
	if err != nil {
		h.writeError(c, err, "Drive not found")
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateCompleted(c *gin.Context) {
	var patch drives.CompletedPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	claims, _ := auth.Principal(c)
	rec, err := h.drives.UpdateCompleted(c.Request.Context(), claims.Subject, c.Param("id"), patch)
	if err != nil {
		h.writeError(c, err, "Drive not found")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteCompleted(c *gin.Context) {
	claims, _ := auth.Principal(c)
	if err := h.drives.DeleteCompleted(c.Request.Context(), claims.Subject, c.Param("id")); err != nil {
		h.writeError(c, err, "Drive not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Drive deleted successfully"})
}

// ---------- Audit trail ----------

// ListAudit returns recent audit entries, newest first.
func (h *Handler) ListAudit(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	entries, err := h.audits.List(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

// ---------- Uploads ----------

// Upload stores an attachment (multipart file or base64 JSON body) and
// returns the public URL for use as an attachment name/url pair.
func (h *Handler) Upload(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Attachment storage not configured"})
		return
	}

	var result *cloudinary.UploadResult
	var err error

	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			h.internalError(c, ferr)
			return
		}
		result, err = h.cloud.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil || body.Data == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = h.cloud.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("attachment upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Attachment upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":       result.SecureURL,
		"public_id": result.PublicID,
		"bytes":     result.Bytes,
	})
}

// ---------- helpers ----------

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	if h.cfg.Production() {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(auth.CookieName, token, int(h.cfg.SessionTTL.Seconds()), "/", "", h.cfg.Production(), true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	if h.cfg.Production() {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.cfg.Production(), true)
}

// writeError maps domain errors onto the response taxonomy. Unexpected
// errors are logged with detail and surface as a generic 500.
func (h *Handler) writeError(c *gin.Context, err error, notFoundMsg string) {
	var verr *drives.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Msg})
	case errors.Is(err, drives.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	default:
		h.internalError(c, err)
	}
}

func (h *Handler) internalError(c *gin.Context, err error) {
	log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
