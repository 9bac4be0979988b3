package voice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTwiMLOrderPreserved(t *testing.T) {
	body, err := RenderTwiML([]any{
		Speak{Text: "Hello there", Voice: "Polly.Danielle-Neural", Language: "en-US"},
		Listen{Action: RouteProcessSpeech},
		Hangup{},
	})
	require.NoError(t, err)

	sayIdx := strings.Index(body, "<Say")
	gatherIdx := strings.Index(body, "<Gather")
	hangupIdx := strings.Index(body, "<Hangup")
	require.True(t, sayIdx >= 0 && gatherIdx >= 0 && hangupIdx >= 0)
	assert.Less(t, sayIdx, gatherIdx)
	assert.Less(t, gatherIdx, hangupIdx)

	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, `voice="Polly.Danielle-Neural"`)
	assert.Contains(t, body, `language="en-US"`)
}

func TestRenderTwiMLGatherAttributes(t *testing.T) {
	body, err := RenderTwiML([]any{Listen{Action: RouteProcessSpeech}})
	require.NoError(t, err)

	assert.Contains(t, body, `input="speech"`)
	assert.Contains(t, body, `action="`+RouteProcessSpeech+`"`)
	assert.Contains(t, body, `method="POST"`)
	assert.Contains(t, body, `speechTimeout="auto"`)
	assert.Contains(t, body, `speechModel="phone_call"`)
	assert.Contains(t, body, `enhanced="true"`)
}

func TestRenderTwiMLEscapesText(t *testing.T) {
	body, err := RenderTwiML([]any{
		Speak{Text: `Books & Co <west branch> said "hi"`},
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Books &amp; Co &lt;west branch&gt;")
	assert.NotContains(t, body, "<west branch>")
}

func TestRenderTwiMLRedirect(t *testing.T) {
	body, err := RenderTwiML([]any{Redirect{Target: RouteIncoming}})
	require.NoError(t, err)

	assert.Contains(t, body, "<Redirect")
	assert.Contains(t, body, RouteIncoming)
}

func TestSanitizeForSpeechStripsPictographs(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"emoji", "Great news! \U0001F389 Your demo is booked \U0001F4C5", "Great news!  Your demo is booked"},
		{"dingbats", "Done ✔ and confirmed ★", "Done  and confirmed"},
		{"private use", "callme", "callme"},
		{"plain text untouched", "See you Tuesday at 2pm.", "See you Tuesday at 2pm."},
		{"accents kept", "Café René on 5th", "Café René on 5th"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeForSpeech(tc.in))
		})
	}
}

func TestSpeakDirectiveStripsEmojiInRenderedMarkup(t *testing.T) {
	body, err := RenderTwiML([]any{Speak{Text: "Hello \U0001F600 world"}})
	require.NoError(t, err)

	assert.Contains(t, body, "Hello  world")
	assert.NotContains(t, body, "\U0001F600")
}
