package server

import (
	"net/url"
	"os"
	"path/filepath"

	"imhub/internal/feed"
	"imhub/internal/models"
	"imhub/internal/repository"

	"github.com/gofiber/fiber/v2"
)

// GetLoginContent handles GET /api/login-content (public)
// @Summary Login page copy
// @Tags content
// @Produce json
// @Success 200 {object} content.LoginContent
// @Router /login-content [get]
func (s *Server) GetLoginContent(c *fiber.Ctx) error {
	return c.JSON(s.contentLoader.Login())
}

// GetContent handles GET /api/content
func (s *Server) GetContent(c *fiber.Ctx) error {
	return c.JSON(s.contentLoader.Load())
}

// GetNavigation handles GET /api/navigation
func (s *Server) GetNavigation(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"navigation": s.contentLoader.Navigation()})
}

// GetDashboard handles GET /api/dashboard/:id
func (s *Server) GetDashboard(c *fiber.Ctx) error {
	return s.sendContent(c, s.contentLoader.Dashboard)
}

// GetForm handles GET /api/form/:id
func (s *Server) GetForm(c *fiber.Ctx) error {
	return s.sendContent(c, s.contentLoader.Form)
}

// GetSector handles GET /api/sector/:id
func (s *Server) GetSector(c *fiber.Ctx) error {
	return s.sendContent(c, s.contentLoader.Sector)
}

// GetStaticResources handles GET /api/resources
func (s *Server) GetStaticResources(c *fiber.Ctx) error {
	return c.JSON(s.contentLoader.Resources())
}

func (s *Server) sendContent(c *fiber.Ctx, lookup func(string) (interface{}, error)) error {
	entry, err := lookup(c.Params("id"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(entry)
}

// DownloadFile handles GET /api/files/:filename
// @Summary Download a shared file
// @Tags content
// @Produce octet-stream
// @Security BearerAuth
// @Param filename path string true "File name"
// @Success 200 {file} file
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /files/{filename} [get]
func (s *Server) DownloadFile(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("filename"))
	if err != nil {
		return respondErr(c, models.NewValidationError("Invalid file name"))
	}

	path, err := s.files.Resolve(name)
	if err != nil {
		return respondErr(c, err)
	}

	// #nosec G304: path is confined to the files directory by Resolve
	data, err := os.ReadFile(path)
	if err != nil {
		return respondErr(c, models.NewNotFoundMessage("File not found"))
	}

	c.Attachment(filepath.Base(path))
	c.Set(fiber.HeaderContentType, fiber.MIMEOctetStream)
	return c.Send(data)
}

// AnnouncementsRSS handles GET /api/announcements/rss (public)
// @Summary Announcement feed
// @Tags announcements
// @Produce xml
// @Success 200 {string} string "RSS 2.0 document"
// @Router /announcements/rss [get]
func (s *Server) AnnouncementsRSS(c *fiber.Ctx) error {
	rows, err := s.announcementRepo.List(c.UserContext(), repository.ListOptions{
		ApprovedOnly: true,
		Limit:        50,
	})
	if err != nil {
		return respondErr(c, err)
	}

	body, err := feed.RenderRSS(feed.DefaultChannel(s.config.PublicBaseURL), rows, nowUTC())
	if err != nil {
		return respondErr(c, models.NewInternalError(err))
	}

	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.Send(body)
}

// GetMapActionFeed handles GET /api/mapaction-feed
// @Summary Latest upstream map products
// @Tags feeds
// @Produce json
// @Security BearerAuth
// @Success 200 {object} feed.MapFeed
// @Failure 503 {object} models.ErrorResponse
// @Router /mapaction-feed [get]
func (s *Server) GetMapActionFeed(c *fiber.Ctx) error {
	out, err := s.feedClient.Fetch(c.UserContext())
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(out)
}

// RedirectLink handles GET /link/:slug
// @Summary Follow a short link
// @Tags links
// @Param slug path string true "Slug"
// @Success 302
// @Failure 404 {object} models.ErrorResponse
// @Router /link/{slug} [get]
func (s *Server) RedirectLink(c *fiber.Ctx) error {
	link, err := s.linkRepo.GetBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondErr(c, err)
	}
	return c.Redirect(link.URL, fiber.StatusFound)
}
