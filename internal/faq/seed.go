package faq

import "context"

// seedEntries are the initial curated question/answer pairs for the LiveKit
// documentation assistant.
var seedEntries = []CreateEntryParams{
	{
		Question: "how to mute audio",
		Answer:   "Use `track.setEnabled(false)` to mute an audio track, or `localParticipant.setMicrophoneEnabled(false)` to mute your microphone.",
		Category: ptr("Audio"),
	},
	{
		Question: "how to disable video",
		Answer:   "Use `track.setEnabled(false)` for a video track, or `localParticipant.setCameraEnabled(false)` to turn off your camera.",
		Category: ptr("Video"),
	},
	{
		Question: "how to join a room",
		Answer:   "Use `room.connect(url, token)` to join a LiveKit room with your connection URL and access token.",
		Category: ptr("Connection"),
	},
	{
		Question: "what is a track",
		Answer:   "A Track represents a media stream (audio or video) that can be published to or subscribed from a Room. Tracks can be local (your media) or remote (other participants' media).",
		Category: ptr("Concepts"),
	},
	{
		Question: "how to publish a track",
		Answer:   "Use `localParticipant.publishTrack(track)` to publish a local track to the room for other participants to receive.",
		Category: ptr("Publishing"),
	},
	{
		Question: "how to subscribe to a track",
		Answer:   "Track subscription happens automatically. Listen to the `TrackSubscribed` event to handle newly subscribed tracks from other participants.",
		Category: ptr("Subscribing"),
	},
	{
		Question: "how to screen share",
		Answer:   "Use `localParticipant.setScreenShareEnabled(true)` to start screen sharing, or create a screen capture track and publish it.",
		Category: ptr("Screen Share"),
	},
	{
		Question: "what are agents",
		Answer:   "LiveKit Agents are programmable participants that can join rooms to perform tasks like transcription, AI responses, or media processing. Build them using the Agents SDK (Python or Node.js).",
		Category: ptr("Agents"),
	},
	{
		Question: "how to get token",
		Answer:   "Access tokens are generated server-side using LiveKit's token generation libraries. Tokens grant permissions and identify participants. Never generate tokens client-side in production.",
		Category: ptr("Authentication"),
	},
	{
		Question: "what sdks are available",
		Answer:   "LiveKit provides SDKs for: JavaScript/TypeScript, React, React Native, Swift (iOS/macOS), Kotlin (Android), Flutter, Unity, Python Agents, and Node.js Agents.",
		Category: ptr("SDKs"),
	},
}

// Seed inserts the initial FAQ entries and returns how many were created.
func (c *Cache) Seed(ctx context.Context) (int, error) {
	for i, e := range seedEntries {
		if _, err := c.querier.CreateEntry(ctx, e); err != nil {
			return i, err
		}
	}
	return len(seedEntries), nil
}

func ptr(s string) *string { return &s }
