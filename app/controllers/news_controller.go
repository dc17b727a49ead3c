package controllers

import (
	"html/template"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/metrics/counter"
	"github.com/tradewindhq/tradewind/internal/pkg/utils"
)

const newsPerPage = 20

// HandleNewsIndex renders the public market commentary page
func HandleNewsIndex(c *fiber.Ctx) error {
	newsList, err := repository.GetGlobalFactory().GetNewsRepository().GetPublished(0, newsPerPage)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to fetch news articles")
	}

	return render(c, "news/index", "News", fiber.Map{
		"NewsList": newsList,
	})
}

// HandleNewsShow renders a single news article
func HandleNewsShow(c *fiber.Ctx) error {
	newsSlug := c.Params("slug")

	news, err := repository.GetGlobalFactory().GetNewsRepository().GetBySlug(newsSlug)
	if err != nil || !news.Published {
		return c.Status(fiber.StatusNotFound).SendString("News article not found")
	}

	if err := counter.AddNewsView(uint64(news.ID)); err != nil {
		log.Debugf("news view counter failed: %v", err)
	}

	return render(c, "news/show", news.Title, fiber.Map{
		"News":        news,
		"ContentHTML": template.HTML(utils.ProcessHTMLContent(news.Content)),
		"OGSummary":   stripHTMLAndTruncate(news.Content, 150),
	})
}
