package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devsfromasia/DevcordBot/internal/embed"
	"github.com/devsfromasia/DevcordBot/internal/permissions"
	"github.com/devsfromasia/DevcordBot/internal/storage"
)

const (
	testInvocationID = "msg-100"
	testChannelID    = "chan-1"
	testGuildID      = "guild-1"
	testHomeGuildID  = "guild-home"
	testUserID       = "user-1"
	testDMChannelID  = "dm-chan-1"
)

// --- fakes for the collaborator interfaces ---

type sentCall struct {
	channelID string
	data      *discordgo.MessageSend
}

type fakeTransport struct {
	mu   sync.Mutex
	sent []sentCall
	err  error
	seq  int
}

func (f *fakeTransport) SendToChannel(channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	f.sent = append(f.sent, sentCall{channelID: channelID, data: data})
	return &discordgo.Message{
		ID:        fmt.Sprintf("resp-%d", f.seq),
		ChannelID: channelID,
	}, nil
}

func (f *fakeTransport) calls() []sentCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentCall(nil), f.sent...)
}

type fakeDirectory struct {
	mu sync.Mutex

	membership    permissions.Membership
	membershipErr error
	dmChannel     *discordgo.Channel
	dmErr         error

	membershipCalls []string // guild IDs passed in
	dmCalls         int
}

func (f *fakeDirectory) ResolveMembership(guildID, userID string) (permissions.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.membershipCalls = append(f.membershipCalls, guildID)
	if f.membershipErr != nil {
		return permissions.Membership{}, f.membershipErr
	}
	return f.membership, nil
}

func (f *fakeDirectory) DMChannel(userID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dmCalls++
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	return f.dmChannel, nil
}

type fakeProfiles struct {
	profile *storage.Profile
	err     error
}

func (f *fakeProfiles) GetProfile(guildID, userID string) (*storage.Profile, error) {
	return f.profile, f.err
}

type fakeHelp struct {
	rendered *Command
}

func (f *fakeHelp) RenderHelp(cmd *Command) *embed.Message {
	f.rendered = cmd
	return &embed.Message{Title: "Command: " + cmd.Name, Description: cmd.Description}
}

// --- helpers ---

func guildMessage() *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        testInvocationID,
		ChannelID: testChannelID,
		GuildID:   testGuildID,
		Author:    &discordgo.User{ID: testUserID},
	}}
}

func dmMessage() *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        testInvocationID,
		ChannelID: testDMChannelID,
		Author:    &discordgo.User{ID: testUserID},
	}}
}

func testDeps(tr *fakeTransport, dir *fakeDirectory) Deps {
	return Deps{
		Transport:   tr,
		Directory:   dir,
		Tracker:     NewResponseTracker(),
		HomeGuildID: testHomeGuildID,
	}
}

func waitSend(t *testing.T, s *Send) (*discordgo.Message, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.Wait(ctx)
}

// --- tests ---

func TestRespondRegistersRecord(t *testing.T) {
	tr := &fakeTransport{}
	deps := testDeps(tr, &fakeDirectory{})
	ctx := NewContext(deps, &Command{Name: "ping"}, nil, guildMessage())

	msg, err := waitSend(t, ctx.Respond("hello"))
	require.NoError(t, err)
	require.NotNil(t, msg)

	records := deps.Tracker.Records(testInvocationID)
	require.Len(t, records, 1)
	assert.Equal(t, testInvocationID, records[0].InvocationID)
	assert.Equal(t, msg.ChannelID, records[0].ChannelID)
	assert.Equal(t, msg.ID, records[0].MessageID)

	calls := tr.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testChannelID, calls[0].channelID)
	assert.Equal(t, "hello", calls[0].data.Content)

	// Broad-audience mentions must never expand for plain text.
	require.NotNil(t, calls[0].data.AllowedMentions)
	parse := calls[0].data.AllowedMentions.Parse
	assert.Contains(t, parse, discordgo.AllowedMentionTypeUsers)
	assert.Contains(t, parse, discordgo.AllowedMentionTypeRoles)
	assert.NotContains(t, parse, discordgo.AllowedMentionTypeEveryone)
}

func TestRespondTransportFailure(t *testing.T) {
	cause := errors.New("boom")
	tr := &fakeTransport{err: cause}
	deps := testDeps(tr, &fakeDirectory{})
	ctx := NewContext(deps, &Command{Name: "ping"}, nil, guildMessage())

	_, err := waitSend(t, ctx.Respond("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)

	assert.Empty(t, deps.Tracker.Records(testInvocationID),
		"a failed send must not produce a record")
}

func TestRespondEmptyPayload(t *testing.T) {
	tr := &fakeTransport{}
	deps := testDeps(tr, &fakeDirectory{})
	ctx := NewContext(deps, &Command{Name: "ping"}, nil, guildMessage())

	_, err := waitSend(t, ctx.Respond(""))
	assert.ErrorIs(t, err, ErrEmptyPayload)
	assert.Empty(t, tr.calls(), "empty payloads never reach the transport")

	_, err = waitSend(t, ctx.RespondEmbed(nil))
	assert.ErrorIs(t, err, ErrEmptyPayload)
	_, err = waitSend(t, ctx.RespondMessage(nil))
	assert.ErrorIs(t, err, ErrEmptyPayload)
	_, err = waitSend(t, ctx.RespondBuilder(nil))
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestMultipleResponsesSameInvocation(t *testing.T) {
	tr := &fakeTransport{}
	deps := testDeps(tr, &fakeDirectory{})
	ctx := NewContext(deps, &Command{Name: "ping"}, nil, guildMessage())

	sends := []*Send{
		ctx.Respond("one"),
		ctx.Respond("two"),
		ctx.Respond("three"),
	}
	for _, s := range sends {
		_, err := waitSend(t, s)
		require.NoError(t, err)
	}

	records := deps.Tracker.Records(testInvocationID)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, testInvocationID, r.InvocationID)
	}

	// Same invocation delivers to the transport in call order.
	calls := tr.calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "one", calls[0].data.Content)
	assert.Equal(t, "two", calls[1].data.Content)
	assert.Equal(t, "three", calls[2].data.Content)
}

func TestConcurrentInvocationsShareTracker(t *testing.T) {
	tr := &fakeTransport{}
	tracker := NewResponseTracker()

	const invocations = 10
	var wg sync.WaitGroup
	for i := 0; i < invocations; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			m := &discordgo.MessageCreate{Message: &discordgo.Message{
				ID:        fmt.Sprintf("inv-%d", n),
				ChannelID: testChannelID,
				GuildID:   testGuildID,
				Author:    &discordgo.User{ID: testUserID},
			}}
			deps := Deps{Transport: tr, Directory: &fakeDirectory{}, Tracker: tracker, HomeGuildID: testHomeGuildID}
			ctx := NewContext(deps, &Command{Name: "ping"}, nil, m)
			_, err := waitSend(t, ctx.Respond("hi"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < invocations; i++ {
		assert.Len(t, tracker.Records(fmt.Sprintf("inv-%d", i)), 1)
	}
}

func TestDMFallbackResolution(t *testing.T) {
	dir := &fakeDirectory{
		membership: permissions.Membership{Present: true, Permissions: discordgo.PermissionAdministrator},
		dmChannel:  &discordgo.Channel{ID: testDMChannelID},
	}
	tr := &fakeTransport{}
	deps := testDeps(tr, dir)

	ctx := NewContext(deps, &Command{Name: "ping"}, nil, dmMessage())

	// Channel and membership resolve through the home-scope fallback,
	// deterministically.
	assert.Equal(t, testDMChannelID, ctx.ChannelID())
	assert.Equal(t, testHomeGuildID, ctx.GuildID())
	assert.True(t, ctx.HasAdmin())
	require.NotEmpty(t, dir.membershipCalls)
	assert.Equal(t, testHomeGuildID, dir.membershipCalls[0])

	again := NewContext(deps, &Command{Name: "ping"}, nil, dmMessage())
	assert.Equal(t, ctx.ChannelID(), again.ChannelID())
	assert.Equal(t, ctx.HasAdmin(), again.HasAdmin())

	msg, err := waitSend(t, ctx.Respond("hello"))
	require.NoError(t, err)
	assert.Equal(t, testDMChannelID, msg.ChannelID)
}

func TestDMChannelResolutionFailure(t *testing.T) {
	dir := &fakeDirectory{dmErr: errors.New("cannot open dm")}
	tr := &fakeTransport{}
	deps := testDeps(tr, dir)

	ctx := NewContext(deps, &Command{Name: "ping"}, nil, dmMessage())

	_, err := waitSend(t, ctx.Respond("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoResponseChannel)
	assert.Empty(t, tr.calls())
	assert.Empty(t, deps.Tracker.Records(testInvocationID))
}

func TestMembershipLookupMissDegrades(t *testing.T) {
	dir := &fakeDirectory{
		membershipErr: errors.New("not a member"),
		dmChannel:     &discordgo.Channel{ID: testDMChannelID},
	}
	deps := testDeps(&fakeTransport{}, dir)

	ctx := NewContext(deps, &Command{Name: "ping"}, nil, dmMessage())

	// Absent from the home scope too: no privilege, but no failure either.
	assert.False(t, ctx.HasAdmin())
	assert.False(t, ctx.HasModerator())
	assert.True(t, ctx.HasPermission(permissions.TierNone))
}

func TestHasPermissionProfileOverride(t *testing.T) {
	deps := testDeps(&fakeTransport{}, &fakeDirectory{
		membership: permissions.Membership{Present: true}, // no useful roles
	})
	deps.Profiles = &fakeProfiles{profile: &storage.Profile{UserID: testUserID, Rank: "admin"}}

	ctx := NewContext(deps, &Command{Name: "rank"}, nil, guildMessage())

	assert.True(t, ctx.HasAdmin())
	assert.True(t, ctx.HasModerator())
}

func TestSendHelp(t *testing.T) {
	tr := &fakeTransport{}
	hr := &fakeHelp{}
	deps := testDeps(tr, &fakeDirectory{})
	deps.Help = hr

	cmd := &Command{Name: "rank", Description: "Grant a rank."}
	ctx := NewContext(deps, cmd, nil, guildMessage())

	_, err := waitSend(t, ctx.SendHelp())
	require.NoError(t, err)

	// Renderer got the executing command's descriptor...
	assert.Same(t, cmd, hr.rendered)

	// ...and the result went through the regular respond path.
	calls := tr.calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].data.Embeds, 1)
	assert.Equal(t, "Command: rank", calls[0].data.Embeds[0].Title)
	assert.Len(t, deps.Tracker.Records(testInvocationID), 1)
}

func TestRespondPayloadShapes(t *testing.T) {
	tr := &fakeTransport{}
	deps := testDeps(tr, &fakeDirectory{})
	ctx := NewContext(deps, &Command{Name: "ping"}, nil, guildMessage())

	sends := []*Send{
		ctx.Respond("raw text"),
		ctx.RespondEmbed(&discordgo.MessageEmbed{Title: "prebuilt"}),
		ctx.RespondBuilder(embed.NewBuilder().Title("built")),
		ctx.RespondMessage(&embed.Message{Title: "convention"}),
	}
	for _, s := range sends {
		_, err := waitSend(t, s)
		require.NoError(t, err)
	}

	calls := tr.calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "raw text", calls[0].data.Content)
	assert.Equal(t, "prebuilt", calls[1].data.Embeds[0].Title)
	assert.Equal(t, "built", calls[2].data.Embeds[0].Title)
	assert.Equal(t, "convention", calls[3].data.Embeds[0].Title)

	assert.Len(t, deps.Tracker.Records(testInvocationID), 4)
}
