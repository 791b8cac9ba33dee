/* handlers.go
 * Contains testable handler methods that accept the DiscordSession interface. Every command runs as the user linked
 * to the message author's discord account
 */

package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bolao-bot/api/api"
	"bolao-bot/api/logic"
	"bolao-bot/api/shared"

	"github.com/bwmarrin/discordgo"
	"github.com/go-andiamo/splitter"
	"github.com/rs/zerolog/log"
)

// discord rejects messages longer than this
const maxMessageLength = 2000

var spaceSplitter, _ = splitter.NewSplitter(' ', splitter.DoubleQuotes, splitter.LeftRightDoubleDoubleQuotes)

// commandArgs splits a message into its words, keeping quoted text together
func commandArgs(content string) ([]string, error) {
	parts, err := spaceSplitter.Split(strings.TrimSpace(content))
	if err != nil {
		return nil, err
	}
	args := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			args = append(args, part)
		}
	}
	return args, nil
}

// send posts text to the message's channel, splitting it on line breaks when it is too long for one message
func send(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate, text string) {
	for _, chunk := range chunkMessage(text, maxMessageLength) {
		if _, err := session.ChannelMessageSend(message.ChannelID, chunk); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("channel", message.ChannelID).Msg("failed to send discord message")
			return
		}
	}
}

func chunkMessage(text string, limit int) []string {
	if len(text) <= limit {
		return []string{text}
	}
	var chunks []string
	var current strings.Builder
	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > limit {
			if current.Len() > 0 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len()+len(line) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteString(line)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// reply sends text followed by the messages the action left on req
func reply(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate, req *shared.Request, text string) {
	var res strings.Builder
	res.WriteString(text)
	if req != nil {
		for _, m := range req.Messages {
			if res.Len() > 0 {
				res.WriteString("\n")
			}
			res.WriteString(m.Text)
		}
	}
	if res.Len() == 0 {
		return
	}
	send(ctx, session, message, res.String())
}

// replyError logs unexpected errors and sends the user facing text for err
func replyError(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate, err error) {
	if !api.IsKnown(err) {
		log.Ctx(ctx).Error().Err(err).Str("command", message.Content).Msg("discord command failed")
	}
	send(ctx, session, message, fmt.Sprintf("%s: %s", message.Author.Username, api.UserMessage(err)))
}

// request resolves the message author to a pool user
func (b *Bot) request(ctx context.Context, message *discordgo.MessageCreate) (*shared.Request, error) {
	user, err := b.APIPtr.EnsureDiscordUser(ctx, message.Author.ID, message.Author.Username)
	if err != nil {
		return nil, err
	}
	return shared.NewRequest(user), nil
}

func formatScore(home *int, away *int) string {
	if home == nil || away == nil {
		return "-"
	}
	return fmt.Sprintf("%d-%d", *home, *away)
}

func formatMatch(m api.MatchView) string {
	if m.Finalized {
		return fmt.Sprintf("%s %d x %d %s", m.Home.Name, *m.HomeScore, *m.AwayScore, m.Away.Name)
	}
	return fmt.Sprintf("%s x %s", m.Home.Name, m.Away.Name)
}

func phaseText(phase logic.Phase) string {
	switch phase {
	case logic.PhaseOpen:
		return "open for bets"
	case logic.PhaseLocked:
		return "closed, waiting for results"
	case logic.PhaseFinalized:
		return "results in, waiting to be scored"
	case logic.PhaseScored:
		return "scored"
	default:
		return string(phase)
	}
}

// helpMessageHandler handles the $help command
func (b *Bot) helpMessageHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	var res strings.Builder
	res.WriteString("Bolão Bot\n")
	res.WriteString("`$rounds`: lists every round with its deadline and status\n")
	res.WriteString("`$round n`: shows the matches of round n. Once betting has closed it also shows everyone's bets\n")
	res.WriteString("`$bet n 2-1 0-0 ...`: sets your bet for round n, one score per match in the order `$round n` shows them. `2x1` and `2:1` also work\n")
	res.WriteString("Bets can be changed until the deadline, the last one sent counts\n")
	res.WriteString("`$mybets`: shows your bets\n")
	res.WriteString("`$ranking`: shows the top 50. An exact score is worth 10 points, the right winner (or a draw) 5\n")
	res.WriteString("`$history`: shows how each of your scored rounds went\n")
	send(ctx, session, message, res.String())
}

// roundsHandler handles the $rounds command
func (b *Bot) roundsHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	rounds, err := b.APIPtr.ListRounds(ctx)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	if len(rounds) == 0 {
		send(ctx, session, message, "No rounds have been created yet")
		return
	}

	var res strings.Builder
	res.WriteString("Rounds:\n")
	for _, r := range rounds {
		res.WriteString(fmt.Sprintf("- Round %d: %d matches, deadline %s (%s)\n", r.Number, len(r.Matches), r.DeadlineText, phaseText(r.Phase)))
	}
	send(ctx, session, message, res.String())
}

// roundHandler handles the $round n command
func (b *Bot) roundHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil || len(args) != 2 {
		send(ctx, session, message, "Usage: `$round n`")
		return
	}
	number, err := strconv.Atoi(args[1])
	if err != nil {
		send(ctx, session, message, fmt.Sprintf("%q is not a round number", args[1]))
		return
	}

	round, err := b.APIPtr.GetRoundByNumber(ctx, number)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("Round %d, deadline %s (%s)\n", round.Number, round.DeadlineText, phaseText(round.Phase)))
	for i, m := range round.Matches {
		res.WriteString(fmt.Sprintf("%d. %s\n", i+1, formatMatch(m)))
	}

	if round.Phase == logic.PhaseOpen {
		send(ctx, session, message, res.String())
		return
	}

	req, err := b.request(ctx, message)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	predictions, err := b.APIPtr.RoundPredictions(ctx, req, round.ID)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	if len(predictions) > 0 {
		res.WriteString("Bets:\n")
	}
	for _, p := range predictions {
		scores := make([]string, 0, len(p.Entries))
		for _, e := range p.Entries {
			scores = append(scores, formatScore(e.HomeScore, e.AwayScore))
		}
		res.WriteString(fmt.Sprintf("- %s: %s\n", p.UserName, strings.Join(scores, " ")))
	}
	reply(ctx, session, message, req, res.String())
}

// betHandler handles the $bet n scores... command
func (b *Bot) betHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	args, err := commandArgs(message.Content)
	if err != nil || len(args) < 3 {
		send(ctx, session, message, "Usage: `$bet n 2-1 0-0 ...`, one score per match of round n")
		return
	}
	number, err := strconv.Atoi(args[1])
	if err != nil {
		send(ctx, session, message, fmt.Sprintf("%q is not a round number", args[1]))
		return
	}

	req, err := b.request(ctx, message)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	if err := b.APIPtr.SubmitPredictionLines(ctx, req, number, args[2:]); err != nil {
		replyError(ctx, session, message, err)
		return
	}
	reply(ctx, session, message, req, fmt.Sprintf("%s's bet has been updated", message.Author.Username))
}

// myBetsHandler handles the $mybets command
func (b *Bot) myBetsHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	req, err := b.request(ctx, message)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	predictions, err := b.APIPtr.MyPredictions(ctx, req)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	if len(predictions) == 0 {
		send(ctx, session, message, fmt.Sprintf("%s has not bet yet. Use $bet to place a bet", message.Author.Username))
		return
	}

	var res strings.Builder
	res.WriteString(fmt.Sprintf("%s's bets:\n", message.Author.Username))
	for _, p := range predictions {
		res.WriteString(fmt.Sprintf("Round %d (sent %s)\n", p.RoundNumber, logic.FormatDeadline(p.CreatedAt, b.APIPtr.Location)))
		for _, e := range p.Entries {
			res.WriteString(fmt.Sprintf("- %s %s %s\n", e.Home.Name, formatScore(e.HomeScore, e.AwayScore), e.Away.Name))
		}
	}
	send(ctx, session, message, res.String())
}

// rankingHandler handles the $ranking command
func (b *Bot) rankingHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	entries, err := b.APIPtr.Leaderboard(ctx)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	if len(entries) == 0 {
		send(ctx, session, message, "No rounds have been scored yet")
		return
	}

	var res strings.Builder
	res.WriteString("Ranking:\n")
	for _, e := range entries {
		res.WriteString(fmt.Sprintf("%d. %s - %d pts (%d rounds)\n", e.Position, e.UserName, e.TotalPoints, e.Rounds))
	}
	send(ctx, session, message, res.String())
}

// historyHandler handles the $history command
func (b *Bot) historyHandler(ctx context.Context, session DiscordSession, message *discordgo.MessageCreate) {
	req, err := b.request(ctx, message)
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	history, err := b.APIPtr.UserHistory(ctx, req, "")
	if err != nil {
		replyError(ctx, session, message, err)
		return
	}
	if len(history) == 0 {
		send(ctx, session, message, fmt.Sprintf("%s has no scored rounds yet", message.Author.Username))
		return
	}

	var res strings.Builder
	for _, h := range history {
		res.WriteString(fmt.Sprintf("Round %d: %d pts\n", h.RoundNumber, h.TotalPoints))
		for _, m := range h.Matches {
			res.WriteString(fmt.Sprintf("- %s %s %s, bet %s: %d\n", m.Home.Name, formatScore(m.OfficialHome, m.OfficialAway), m.Away.Name, formatScore(m.PredictedHome, m.PredictedAway), m.Points))
		}
	}
	send(ctx, session, message, res.String())
}

// newMessageHandler routes messages to appropriate handlers with a DiscordSession interface
// botUserID is the bot's user ID to prevent self-responses
func (b *Bot) newMessageHandler(session DiscordSession, message *discordgo.MessageCreate, botUserID string) {
	// Prevent bot from responding to its own messages
	if message.Author == nil || message.Author.ID == botUserID || message.Author.Bot {
		return
	}
	if !startsWith(message.Content, "$") {
		return
	}

	logger := log.With().Str("discord_user", message.Author.ID).Str("channel", message.ChannelID).Logger()
	ctx := logger.WithContext(context.Background())

	if b.limiter != nil && !b.limiter.Allow(message.Author.ID) {
		logger.Debug().Msg("discord command rate limited")
		return
	}

	// Route to appropriate handler
	switch {
	case isCommand(message.Content, "$help"):
		b.helpMessageHandler(ctx, session, message)

	case isCommand(message.Content, "$rounds"):
		b.roundsHandler(ctx, session, message)

	case isCommand(message.Content, "$round"):
		b.roundHandler(ctx, session, message)

	case isCommand(message.Content, "$bet"):
		b.betHandler(ctx, session, message)

	case isCommand(message.Content, "$mybets"):
		b.myBetsHandler(ctx, session, message)

	case isCommand(message.Content, "$ranking"):
		b.rankingHandler(ctx, session, message)

	case isCommand(message.Content, "$history"):
		b.historyHandler(ctx, session, message)
	}
}
