package controllers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
)

const adminNewsPerPage = 50

var slugInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// slugify turns a title into a URL slug, deduplicated via the exists check
func slugify(title string, exists func(slug string) (bool, error)) string {
	slug := strings.Trim(slugInvalidChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "post"
	}
	candidate := slug
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil || !taken {
			return candidate
		}
		candidate = slug + "-" + strconv.Itoa(i)
	}
}

// HandleAdminNews lists all articles including drafts
func HandleAdminNews(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	if page < 1 {
		page = 1
	}

	repo := repository.GetGlobalFactory().GetNewsRepository()
	articles, err := repo.GetAll((page-1)*adminNewsPerPage, adminNewsPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load news")
	}
	total, _ := repo.Count()

	return render(c, "admin/news", "News", fiber.Map{
		"Articles":    articles,
		"Page":        page,
		"HasNextPage": int64(page*adminNewsPerPage) < total,
	})
}

// HandleAdminNewsNew renders the creation form
func HandleAdminNewsNew(c *fiber.Ctx) error {
	return render(c, "admin/news_form", "New article", fiber.Map{
		"Article": &models.News{},
	})
}

// HandleAdminNewsCreate stores a new article
func HandleAdminNewsCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	repo := repository.GetGlobalFactory().GetNewsRepository()

	title := strings.TrimSpace(c.FormValue("title"))
	content := c.FormValue("content")
	if title == "" || content == "" {
		fm := fiber.Map{"type": "error", "message": "Title and content are required."}
		return flash.WithError(c, fm).Redirect("/admin/news/new")
	}

	article := &models.News{
		Title:     title,
		Content:   content,
		Slug:      slugify(title, repo.SlugExists),
		Published: c.FormValue("published") == "on",
		UserID:    uint64(userCtx.UserID),
	}
	if err := repo.Create(article); err != nil {
		fm := fiber.Map{"type": "error", "message": "Article could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/news/new")
	}

	fm := fiber.Map{"type": "success", "message": "Article saved."}
	return flash.WithSuccess(c, fm).Redirect("/admin/news")
}

// HandleAdminNewsEdit renders the edit form
func HandleAdminNewsEdit(c *fiber.Ctx) error {
	article, ok := loadAdminNews(c)
	if !ok {
		return c.Redirect("/admin/news")
	}
	return render(c, "admin/news_form", "Edit article", fiber.Map{
		"Article": article,
	})
}

// HandleAdminNewsUpdate applies edits, re-slugging when the title changed
func HandleAdminNewsUpdate(c *fiber.Ctx) error {
	article, ok := loadAdminNews(c)
	if !ok {
		return c.Redirect("/admin/news")
	}
	repo := repository.GetGlobalFactory().GetNewsRepository()

	if title := strings.TrimSpace(c.FormValue("title")); title != "" && title != article.Title {
		article.Title = title
		article.Slug = slugify(title, func(slug string) (bool, error) {
			return repo.SlugExistsExceptID(slug, uint(article.ID))
		})
	}
	if content := c.FormValue("content"); content != "" {
		article.Content = content
	}
	article.Published = c.FormValue("published") == "on"

	if err := repo.Update(article); err != nil {
		fm := fiber.Map{"type": "error", "message": "Article could not be saved"}
		return flash.WithError(c, fm).Redirect("/admin/news")
	}

	fm := fiber.Map{"type": "success", "message": "Article saved."}
	return flash.WithSuccess(c, fm).Redirect("/admin/news")
}

// HandleAdminNewsDelete soft-deletes an article
func HandleAdminNewsDelete(c *fiber.Ctx) error {
	article, ok := loadAdminNews(c)
	if !ok {
		return c.Redirect("/admin/news")
	}

	if err := repository.GetGlobalFactory().GetNewsRepository().Delete(uint(article.ID)); err != nil {
		fm := fiber.Map{"type": "error", "message": "Article could not be deleted"}
		return flash.WithError(c, fm).Redirect("/admin/news")
	}

	fm := fiber.Map{"type": "success", "message": "Article deleted."}
	return flash.WithSuccess(c, fm).Redirect("/admin/news")
}

func loadAdminNews(c *fiber.Ctx) (*models.News, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Article not found"})
		return nil, false
	}
	article, err := repository.GetGlobalFactory().GetNewsRepository().GetByID(uint(id))
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Article not found"})
		return nil, false
	}
	return article, true
}
