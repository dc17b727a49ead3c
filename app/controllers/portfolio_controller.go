package controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/tradewindhq/tradewind/app/models"
	"github.com/tradewindhq/tradewind/app/repository"
	"github.com/tradewindhq/tradewind/internal/pkg/marketdata"
	"github.com/tradewindhq/tradewind/internal/pkg/usercontext"
	"github.com/tradewindhq/tradewind/internal/pkg/utils"
)

// positionView is a portfolio row enriched with the latest cached quote.
type positionView struct {
	Position  models.PortfolioPosition
	LastPrice float64
	HasQuote  bool
	PnL       float64
	PnLPct    float64
}

// HandlePortfolioIndex renders the member's paper portfolio with live prices
func HandlePortfolioIndex(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	positions, err := repository.GetGlobalFactory().GetPortfolioRepository().GetByUserID(userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load portfolio")
	}

	views := make([]positionView, 0, len(positions))
	for _, pos := range positions {
		view := positionView{Position: pos}
		if pos.IsClosed() && pos.ExitPrice != nil {
			view.LastPrice = *pos.ExitPrice
			view.HasQuote = true
		} else if quote, err := marketdata.GetCachedQuote(pos.Symbol); err == nil {
			view.LastPrice = quote.Price
			view.HasQuote = true
		}
		if view.HasQuote && pos.EntryPrice > 0 {
			view.PnL = (view.LastPrice - pos.EntryPrice) * pos.Shares
			view.PnLPct = (view.LastPrice - pos.EntryPrice) / pos.EntryPrice * 100
		}
		views = append(views, view)
	}

	return render(c, "portfolio/index", "Portfolio", fiber.Map{
		"Positions": views,
	})
}

// HandlePortfolioCreate adds a new position from the form
func HandlePortfolioCreate(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	symbol := utils.NormalizeSymbol(c.FormValue("symbol"))
	shares, err1 := strconv.ParseFloat(c.FormValue("shares"), 64)
	entryPrice, err2 := strconv.ParseFloat(c.FormValue("entry_price"), 64)
	if symbol == "" || err1 != nil || err2 != nil || shares <= 0 || entryPrice <= 0 {
		fm := fiber.Map{
			"type":    "error",
			"message": "Please provide a symbol, share count and entry price.",
		}
		return flash.WithError(c, fm).Redirect("/portfolio")
	}

	position := models.PortfolioPosition{
		UserID:     userCtx.UserID,
		Symbol:     symbol,
		Shares:     shares,
		EntryPrice: entryPrice,
		Notes:      c.FormValue("notes"),
	}
	if err := repository.GetGlobalFactory().GetPortfolioRepository().Create(&position); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Position could not be saved.",
		}
		return flash.WithError(c, fm).Redirect("/portfolio")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Position added.",
	}
	return flash.WithSuccess(c, fm).Redirect("/portfolio")
}

// HandlePortfolioClose closes an open position at the submitted exit price
func HandlePortfolioClose(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	position, ok := loadOwnPosition(c, userCtx.UserID)
	if !ok {
		return c.Redirect("/portfolio")
	}

	exitPrice, err := strconv.ParseFloat(c.FormValue("exit_price"), 64)
	if err != nil || exitPrice <= 0 {
		// Fall back to the cached market price
		if quote, qerr := marketdata.GetCachedQuote(position.Symbol); qerr == nil {
			exitPrice = quote.Price
		} else {
			fm := fiber.Map{
				"type":    "error",
				"message": "No exit price given and no market price available.",
			}
			return flash.WithError(c, fm).Redirect("/portfolio")
		}
	}

	now := time.Now()
	position.ExitPrice = &exitPrice
	position.ClosedAt = &now
	if err := repository.GetGlobalFactory().GetPortfolioRepository().Update(position); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Position could not be closed.",
		}
		return flash.WithError(c, fm).Redirect("/portfolio")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Position closed at " + utils.FormatPrice(exitPrice) + ".",
	}
	return flash.WithSuccess(c, fm).Redirect("/portfolio")
}

// HandlePortfolioDelete removes a position
func HandlePortfolioDelete(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	position, ok := loadOwnPosition(c, userCtx.UserID)
	if !ok {
		return c.Redirect("/portfolio")
	}

	if err := repository.GetGlobalFactory().GetPortfolioRepository().Delete(position.ID); err != nil {
		fm := fiber.Map{
			"type":    "error",
			"message": "Position could not be deleted.",
		}
		return flash.WithError(c, fm).Redirect("/portfolio")
	}

	fm := fiber.Map{
		"type":    "success",
		"message": "Position deleted.",
	}
	return flash.WithSuccess(c, fm).Redirect("/portfolio")
}

func loadOwnPosition(c *fiber.Ctx, userID uint) (*models.PortfolioPosition, bool) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Position not found"})
		return nil, false
	}
	position, err := repository.GetGlobalFactory().GetPortfolioRepository().GetByID(uint(id))
	if err != nil || position.UserID != userID {
		flash.WithError(c, fiber.Map{"type": "error", "message": "Position not found"})
		return nil, false
	}
	return position, true
}
