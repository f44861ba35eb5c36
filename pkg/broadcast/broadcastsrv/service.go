package broadcastsrv

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hoshino-dev/hoshi/pkg/ai/genx"
	"github.com/hoshino-dev/hoshi/pkg/broadcast"
	"github.com/hoshino-dev/hoshi/pkg/chat"
	"github.com/hoshino-dev/hoshi/pkg/config"
	"github.com/hoshino-dev/hoshi/pkg/errx"
	"github.com/hoshino-dev/hoshi/pkg/fsx"
	"github.com/hoshino-dev/hoshi/pkg/logx"
)

// Service runs a broadcast: generate the wishes once, post to the shared
// channel, DM every member in roster order, then notify failed recipients
// in the channel. Each stage is best-effort except guild/channel resolution.
type Service struct {
	transport chat.Transport
	gen       *genx.Generator
	assets    fsx.FileSystem // nil when no asset store is configured
	cfg       config.BroadcastConfig
	chatCfg   config.ChatConfig
	loc       *time.Location
	now       func() time.Time
}

// NewService wires the delivery engine. The configured timezone must parse.
func NewService(
	transport chat.Transport,
	gen *genx.Generator,
	assets fsx.FileSystem,
	cfg config.BroadcastConfig,
	chatCfg config.ChatConfig,
) (*Service, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, errx.Wrap(err, "invalid broadcast timezone", errx.TypeValidation).
			WithDetail("timezone", cfg.Timezone)
	}
	return &Service{
		transport: transport,
		gen:       gen,
		assets:    assets,
		cfg:       cfg,
		chatCfg:   chatCfg,
		loc:       loc,
		now:       time.Now,
	}, nil
}

// Run executes one broadcast. Only an unresolvable guild or channel aborts
// the run; every later failure is logged and the run keeps going.
func (s *Service) Run(ctx context.Context, params broadcast.RunParams) (*broadcast.Outcome, error) {
	started := s.now()
	timeOfDay := broadcast.ResolveTimeOfDay(params.TimeOfDay, started, s.loc)
	logx.Infof("🌅 Broadcast %s starting (%s, test=%v)", params.ID, timeOfDay, params.Test)

	guild, err := s.transport.Guild(ctx, s.chatCfg.GuildID)
	if err != nil {
		logx.Errorf("Error: Could not find guild with ID %s: %v", s.chatCfg.GuildID, err)
		return nil, broadcast.ErrGuildUnavailable(err)
	}
	channel, err := s.transport.Channel(ctx, guild.ID, s.chatCfg.ChannelID)
	if err != nil {
		logx.Errorf("Error: Could not find channel with ID %s: %v", s.chatCfg.ChannelID, err)
		return nil, broadcast.ErrChannelUnavailable(err)
	}

	channelWish := s.gen.Generate(ctx, s.channelPrompt(timeOfDay),
		fmt.Sprintf("Good %s everyone! Hope you have a great time! 💖", timeOfDay))
	dmWish := s.gen.Generate(ctx, s.dmPrompt(timeOfDay),
		fmt.Sprintf("Hey! Just wanted to wish you a wonderful %s! Stay happy! ✨", timeOfDay))

	attachment := s.resolveAttachment(ctx, timeOfDay)

	channelSent := s.sendChannelWish(ctx, channel.ID, channelWish, attachment, params.Test)

	delivery := s.deliverIndividually(ctx, guild.ID, dmWish, attachment, params)

	s.notifyFailed(ctx, channel.ID, dmWish, delivery.failed, params.Test)

	outcome := &broadcast.Outcome{
		ID:          params.ID,
		TimeOfDay:   timeOfDay,
		StartedAt:   started,
		FinishedAt:  s.now(),
		ChannelSent: channelSent,
		Delivered:   delivery.delivered,
		Skipped:     delivery.skipped,
		Failed:      delivery.failed,
	}
	logx.Infof("✅ Broadcast %s done: %d delivered, %d skipped, %d failed",
		params.ID, outcome.Delivered, outcome.Skipped, len(outcome.Failed))
	return outcome, nil
}

type deliveryState struct {
	delivered int
	skipped   int
	failed    []chat.Member
}

func (s *Service) sendChannelWish(ctx context.Context, channelID, wish string, attachment *chat.AttachmentSource, test bool) bool {
	if test {
		logx.Infof("TEST MODE: would post to channel %s: %s", channelID, wish)
		return false
	}
	msg := chat.Message{Content: wish}
	if attachment != nil {
		att, err := attachment.Materialize(ctx)
		if err != nil {
			logx.Warnf("Could not open attachment %s: %v", attachment.Name, err)
		} else {
			msg.Attachment = att
		}
	}
	if err := s.transport.SendChannel(ctx, channelID, msg); err != nil {
		logx.Errorf("Error sending message to channel %s: %v", channelID, err)
		return false
	}
	logx.Info("Wish sent to channel ✨")
	return true
}

// deliverIndividually walks the roster strictly in enumeration order.
// A permission refusal records the member into the failed set; any other
// failure is only logged. Pacing follows every attempted recipient.
func (s *Service) deliverIndividually(ctx context.Context, guildID, dmWish string, attachment *chat.AttachmentSource, params broadcast.RunParams) deliveryState {
	var state deliveryState

	members, err := s.transport.Members(ctx, guildID)
	if err != nil {
		logx.Errorf("Error listing guild members: %v", broadcast.ErrRosterFailed(err))
		return state
	}

	for _, member := range members {
		if member.Bot {
			state.skipped++
			continue
		}
		if params.TargetID != "" && member.ID != params.TargetID {
			state.skipped++
			continue
		}

		if params.Test {
			logx.Infof("TEST MODE: would DM %s (%s)", member.Name, member.ID)
			state.delivered++
		} else if err := s.sendDM(ctx, member, dmWish, attachment); err != nil {
			if chat.IsPermissionDenied(err) {
				logx.Warnf("Could not DM %s (DMs disabled)", member.Name)
				state.failed = append(state.failed, member)
			} else {
				logx.Errorf("Error DMing %s: %v", member.Name, err)
			}
		} else {
			state.delivered++
		}

		if !s.pace(ctx) {
			logx.Warn("Broadcast cancelled mid-roster")
			return state
		}
	}
	return state
}

func (s *Service) sendDM(ctx context.Context, member chat.Member, dmWish string, attachment *chat.AttachmentSource) error {
	msg := chat.Message{Content: dmWish}
	if attachment != nil {
		// the stream is consumed per send, so every recipient gets a fresh one
		att, err := attachment.Materialize(ctx)
		if err != nil {
			logx.Warnf("Could not open attachment for %s: %v", member.Name, err)
		} else {
			msg.Attachment = att
		}
	}
	return s.transport.SendDM(ctx, member.ID, msg)
}

// notifyFailed posts one channel notification per fallback chunk so every
// failed member gets referenced exactly once, with the wish body carried on
// the final message.
func (s *Service) notifyFailed(ctx context.Context, channelID, dmWish string, failed []chat.Member, test bool) {
	if len(failed) == 0 {
		return
	}

	mentions := make([]string, 0, len(failed))
	for _, m := range failed {
		mentions = append(mentions, m.Mention())
	}

	combined := strings.Join(mentions, " ") + "\n" + dmWish
	var messages []string
	if len(combined) <= s.cfg.MaxMessageLen {
		messages = []string{combined}
	} else {
		chunks := broadcast.PackMentions(mentions, "", "", s.cfg.PackBudget)
		messages = chunks[:len(chunks)-1]
		messages = append(messages, chunks[len(chunks)-1]+"\n"+dmWish)
	}

	for _, content := range messages {
		if test {
			logx.Infof("TEST MODE: would post fallback to channel %s (%d chars)", channelID, len(content))
			continue
		}
		if err := s.transport.SendChannel(ctx, channelID, chat.Message{Content: content, NotifyUsers: true}); err != nil {
			logx.Errorf("Error sending fallback notification: %v", err)
		}
	}
	logx.Infof("Notified %d members in channel whose DMs were closed", len(failed))
}

func (s *Service) resolveAttachment(ctx context.Context, timeOfDay string) *chat.AttachmentSource {
	if s.assets == nil {
		return nil
	}
	name := broadcast.AttachmentName(timeOfDay)
	ok, err := s.assets.Exists(ctx, name)
	if err != nil {
		logx.Warnf("Could not check asset %s: %v", name, err)
		return nil
	}
	if !ok {
		logx.Debugf("No asset %s, sending text only", name)
		return nil
	}
	return chat.NewAttachmentSource(s.assets, name)
}

func (s *Service) channelPrompt(timeOfDay string) string {
	return s.chatCfg.PersonaPrompt + "\n\n" +
		fmt.Sprintf("Write a short, cheerful good %s message wishing the whole server well. Two sentences at most, in character.", strings.ToLower(timeOfDay))
}

func (s *Service) dmPrompt(timeOfDay string) string {
	return s.chatCfg.PersonaPrompt + "\n\n" +
		fmt.Sprintf("Write a short, warm good %s message for one person, as a direct message. Two sentences at most, in character.", strings.ToLower(timeOfDay))
}

// pace waits out the configured delay; false means the context was cancelled
func (s *Service) pace(ctx context.Context) bool {
	if s.cfg.Pacing <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(s.cfg.Pacing)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
