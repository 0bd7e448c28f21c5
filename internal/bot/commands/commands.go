package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jensholdgaard/wowtools/internal/combatlog"
	"github.com/jensholdgaard/wowtools/internal/gear"
	"github.com/jensholdgaard/wowtools/internal/gems"
	"github.com/jensholdgaard/wowtools/internal/market"
)

// Market is the part of market.Service the commands use.
type Market interface {
	Compare(ctx context.Context, itemID int) (*market.Comparison, error)
	Search(ctx context.Context, session, query string) ([]market.SearchItem, error)
	Watch(ctx context.Context, owner string, itemID int) error
}

// Logs tallies consumable use of a report.
type Logs interface {
	Usage(ctx context.Context, code string) (*combatlog.UsageTable, error)
}

// Deps are the services behind the commands.
type Deps struct {
	Market  Market
	Gear    *gear.Database
	Weights gear.Weights
	Gems    *gems.Catalog
	Logs    Logs
}

// Handlers process Discord interactions.
type Handlers struct {
	deps   Deps
	logger *slog.Logger
	tracer trace.Tracer
}

// NewHandlers creates new command handlers.
func NewHandlers(deps Deps, logger *slog.Logger, tp trace.TracerProvider) *Handlers {
	if deps.Weights == nil {
		deps.Weights = gear.DefaultWeights()
	}
	return &Handlers{
		deps:   deps,
		logger: logger,
		tracer: tp.Tracer("github.com/jensholdgaard/wowtools/internal/bot/commands"),
	}
}

// SlashCommands returns the slash command definitions.
func SlashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "price",
			Description: "Compare an item's auction prices between the two servers",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "item",
					Description:  "Item name",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "watch",
			Description: "Add an item to your watchlist",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "item",
					Description:  "Item name",
					Required:     true,
					Autocomplete: true,
				},
			},
		},
		{
			Name:        "gear",
			Description: "Score a gear piece",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "id",
					Description: "Item id",
					Required:    true,
				},
			},
		},
		{
			Name:        "gems",
			Description: "Search the gem catalog by name or stat",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "query",
					Description: "Words to match, e.g. \"strength ruby\"",
					Required:    true,
				},
			},
		},
		{
			Name:        "consumables",
			Description: "Show potion use per raider in a combat-log report",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "report",
					Description: "Report code",
					Required:    true,
				},
			},
		},
	}
}

// InteractionCreate handles slash commands and autocomplete requests.
func (h *Handlers) InteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand && i.Type != discordgo.InteractionApplicationCommandAutocomplete {
		return
	}
	data := i.ApplicationCommandData()

	ctx, span := h.tracer.Start(context.Background(), "InteractionCreate",
		trace.WithAttributes(
			attribute.String("command", data.Name),
			attribute.Bool("autocomplete", i.Type == discordgo.InteractionApplicationCommandAutocomplete),
		),
	)
	defer span.End()

	if i.Type == discordgo.InteractionApplicationCommandAutocomplete {
		h.handleAutocomplete(ctx, s, i)
		return
	}

	switch data.Name {
	case "price":
		h.handlePrice(ctx, s, i)
	case "watch":
		h.handleWatch(ctx, s, i)
	case "gear":
		h.handleGear(ctx, s, i)
	case "gems":
		h.handleGems(ctx, s, i)
	case "consumables":
		h.handleConsumables(ctx, s, i)
	default:
		respond(s, i, "Unknown command")
	}
}

// handleAutocomplete suggests items for /price and /watch. Searches are
// debounced per user, so fast typing reaches the API once per burst.
func (h *Handlers) handleAutocomplete(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	query := ""
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Focused {
			query = opt.StringValue()
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	items, err := h.deps.Market.Search(ctx, userID(i), query)
	switch {
	case err == nil:
		choices = SearchChoices(items)
	case errors.Is(err, market.ErrQueryTooShort), errors.Is(err, context.Canceled):
		// nothing to suggest yet
	default:
		h.logger.WarnContext(ctx, "item autocomplete failed", slog.Any("error", err))
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	}); err != nil {
		h.logger.WarnContext(ctx, "autocomplete response failed", slog.Any("error", err))
	}
}

// resolveItem turns the item option into an id. Autocomplete fills in the
// id; free text falls back to the first search hit.
func (h *Handlers) resolveItem(ctx context.Context, i *discordgo.InteractionCreate) (int, error) {
	raw := strings.TrimSpace(i.ApplicationCommandData().Options[0].StringValue())
	if id, err := strconv.Atoi(raw); err == nil {
		return id, nil
	}
	items, err := h.deps.Market.Search(ctx, userID(i), raw)
	if err != nil {
		return 0, err
	}
	if len(items) == 0 {
		return 0, market.ErrNotFound
	}
	return int(items[0].ItemID), nil
}

func (h *Handlers) handlePrice(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	deferResponse(s, i)

	id, err := h.resolveItem(ctx, i)
	if err != nil {
		followUp(s, i, fmt.Sprintf("Could not find that item: %s", err))
		return
	}
	c, err := h.deps.Market.Compare(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "price comparison failed", slog.Int("item_id", id), slog.Any("error", err))
		followUp(s, i, fmt.Sprintf("Failed to fetch prices: %s", err))
		return
	}
	followUp(s, i, FormatComparison(c))
}

func (h *Handlers) handleWatch(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	deferResponse(s, i)

	id, err := h.resolveItem(ctx, i)
	if err != nil {
		followUp(s, i, fmt.Sprintf("Could not find that item: %s", err))
		return
	}
	if err := h.deps.Market.Watch(ctx, userID(i), id); err != nil {
		followUp(s, i, fmt.Sprintf("Failed to watch item: %s", err))
		return
	}
	followUp(s, i, fmt.Sprintf("Item `%d` added to your watchlist.", id))
}

func (h *Handlers) handleGear(_ context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	id := int(i.ApplicationCommandData().Options[0].IntValue())
	p, err := h.deps.Gear.ByID(id)
	if err != nil {
		respond(s, i, fmt.Sprintf("No gear piece with id %d.", id))
		return
	}
	respond(s, i, FormatEvaluation(p, gear.Evaluate(p, h.deps.Weights)))
}

func (h *Handlers) handleGems(_ context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	query := i.ApplicationCommandData().Options[0].StringValue()
	respond(s, i, FormatGems(h.deps.Gems.Search(query)))
}

func (h *Handlers) handleConsumables(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	deferResponse(s, i)

	code := strings.TrimSpace(i.ApplicationCommandData().Options[0].StringValue())
	table, err := h.deps.Logs.Usage(ctx, code)
	if err != nil {
		followUp(s, i, fmt.Sprintf("Failed to load report `%s`: %s", code, err))
		return
	}
	followUp(s, i, FormatUsage(table))
}

func userID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: truncate(msg),
		},
	})
}

// deferResponse acknowledges a command whose answer needs an API call.
func deferResponse(s *discordgo.Session, i *discordgo.InteractionCreate) {
	_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	})
}

func followUp(s *discordgo.Session, i *discordgo.InteractionCreate, msg string) {
	content := truncate(msg)
	_, _ = s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content})
}
