package server

import (
	"strings"

	"imhub/internal/middleware"
	"imhub/internal/models"
	"imhub/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// reservedQueryKeys are list parameters that are not column filters.
var reservedQueryKeys = map[string]bool{
	"approved_only":   true,
	"include_deleted": true,
	"limit":           true,
}

// entityHandler serves the shared lifecycle routes of one directory entity.
type entityHandler[T any, PT repository.Record[T]] struct {
	repo *repository.EntityRepository[T, PT]
	// defaultApprovedOnly applies when an admin does not pass approved_only.
	defaultApprovedOnly bool
	// prepare runs on a decoded record before it is created.
	prepare func(c *fiber.Ctx, rec *T)
}

func newEntityHandler[T any, PT repository.Record[T]](repo *repository.EntityRepository[T, PT]) *entityHandler[T, PT] {
	return &entityHandler[T, PT]{repo: repo, defaultApprovedOnly: true}
}

// entityRoutes picks the guard chain of each route tier.
type entityRoutes struct {
	list   []fiber.Handler
	create []fiber.Handler
	admin  []fiber.Handler
}

// mountEntity registers the lifecycle routes. Fixed paths come before /:id.
func mountEntity[T any, PT repository.Record[T]](r fiber.Router, h *entityHandler[T, PT], routes entityRoutes) {
	r.Get("/", chain(routes.list, h.List)...)
	r.Post("/", chain(routes.create, h.Create)...)
	r.Get("/deleted", chain(routes.admin, h.ListDeleted)...)
	r.Get("/:id", chain(routes.list, h.Get)...)
	r.Put("/:id", chain(routes.admin, h.Update)...)
	if h.moderated() {
		r.Patch("/:id/approve", chain(routes.admin, h.Approve)...)
	}
	r.Patch("/:id/restore", chain(routes.admin, h.Restore)...)
	r.Delete("/:id/permanent", chain(routes.admin, h.PermanentDelete)...)
	r.Delete("/:id", chain(routes.admin, h.Delete)...)
}

func chain(guards []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(guards)+1)
	out = append(out, guards...)
	return append(out, h)
}

func (h *entityHandler[T, PT]) moderated() bool {
	_, ok := any(new(T)).(models.Moderated)
	return ok
}

// listOptions applies the widening rule: only a verified admin may see
// unapproved or deleted rows.
func (h *entityHandler[T, PT]) listOptions(c *fiber.Ctx) repository.ListOptions {
	opts := repository.ListOptions{
		Filters:      make(map[string]string),
		ApprovedOnly: true,
		Limit:        c.QueryInt("limit", 0),
	}
	if opts.Limit < 0 {
		opts.Limit = 0
	}
	for k, v := range c.Queries() {
		if !reservedQueryKeys[k] {
			opts.Filters[k] = strings.TrimSpace(v)
		}
	}
	if middleware.IsAdmin(c) {
		opts.ApprovedOnly = c.QueryBool("approved_only", h.defaultApprovedOnly)
		opts.IncludeDeleted = c.QueryBool("include_deleted", false)
	}
	return opts
}

// List handles GET /api/<entities>
func (h *entityHandler[T, PT]) List(c *fiber.Ctx) error {
	rows, err := h.repo.List(c.UserContext(), h.listOptions(c))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rows)
}

// ListDeleted handles GET /api/<entities>/deleted (admin only)
func (h *entityHandler[T, PT]) ListDeleted(c *fiber.Ctx) error {
	opts := h.listOptions(c)
	opts.OnlyDeleted = true
	opts.ApprovedOnly = false
	rows, err := h.repo.List(c.UserContext(), opts)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rows)
}

// Get handles GET /api/<entities>/:id. Hidden rows are NotFound for non-admins.
func (h *entityHandler[T, PT]) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	rec, err := h.repo.Get(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	if !middleware.IsAdmin(c) && !visible(rec) {
		return respondErr(c, models.NewNotFoundError(h.repo.Resource(), id))
	}
	return c.JSON(rec)
}

func visible(rec any) bool {
	if e, ok := rec.(models.Entity); ok && e.IsDeleted() {
		return false
	}
	if m, ok := rec.(models.Moderated); ok && !m.IsApproved() {
		return false
	}
	return true
}

// Create handles POST /api/<entities>
func (h *entityHandler[T, PT]) Create(c *fiber.Ctx) error {
	rec := new(T)
	if err := c.BodyParser(rec); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}
	if h.prepare != nil {
		h.prepare(c, rec)
	}

	if err := h.repo.Create(c.UserContext(), rec); err != nil {
		return respondErr(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// Update handles PUT /api/<entities>/:id. Only members present in the body change.
func (h *entityHandler[T, PT]) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var patch repository.Patch
	if err := c.BodyParser(&patch); err != nil {
		return respondErr(c, models.NewValidationError("Invalid request body"))
	}

	rec, err := h.repo.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rec)
}

// Approve handles PATCH /api/<entities>/:id/approve. ?approved=false withdraws approval.
func (h *entityHandler[T, PT]) Approve(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	rec, err := h.repo.SetApproval(c.UserContext(), id, c.QueryBool("approved", true))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rec)
}

// Delete handles DELETE /api/<entities>/:id. ?permanent=true removes the row.
func (h *entityHandler[T, PT]) Delete(c *fiber.Ctx) error {
	if c.QueryBool("permanent", false) {
		return h.PermanentDelete(c)
	}

	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if _, err := h.repo.SoftDelete(c.UserContext(), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": h.repo.Resource() + " deleted", "id": id})
}

// PermanentDelete handles DELETE /api/<entities>/:id/permanent
func (h *entityHandler[T, PT]) PermanentDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := h.repo.PermanentDelete(c.UserContext(), id); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(fiber.Map{"message": h.repo.Resource() + " permanently deleted", "id": id})
}

// Restore handles PATCH /api/<entities>/:id/restore
func (h *entityHandler[T, PT]) Restore(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	rec, err := h.repo.Restore(c.UserContext(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(rec)
}

// attributeCreator records the verified caller on a new short link. Anonymous
// links carry no creator whatever the body says.
func attributeCreator(c *fiber.Ctx, link *models.ShortLink) {
	link.CreatedBy = nil
	if id := middleware.IdentityFrom(c); id != nil {
		username := id.Username
		link.CreatedBy = &username
	}
}
