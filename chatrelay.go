// Package chatrelay serves two real-time chat channels over websockets.
//
//     chatrelay -addr=:8081
//
// Connect to a channel by opening a websocket with a bearer token in the
// query string. The token must carry the role USER or ADMIN.
//     ws://localhost:8081/api/ws/chat?token=...
//     ws://localhost:8081/api/ws/ai-chat?token=...
//
// Publish by sending a JSON frame.
//     {"type":"message","payload":{"sender":"Ana","text":"oi"}}
//
// Every accepted message is appended to the channel history (the last 200
// messages, in memory only) and the whole history is pushed to every
// connected client, the sender included.
//     {"type":"state","messages":[{"id":"...","sender":"Ana","text":"oi","createdAt":"..."}]}
//
// The ai-chat channel answers each message. Text outside the supported
// topics gets a fixed refusal; the rest is forwarded to the configured LLM
// provider. Progress is reported with status frames.
//     {"type":"status","state":"online"|"offline"|"processing"}
//
// Admins can also publish over HTTP.
//     curl -H "Authorization: Bearer ..." localhost:8081/api/chat/chat/messages -d '{"text":"Hello"}'
package main

const (
	chatChannel   = "chat"
	aiChatChannel = "ai-chat"

	historyCapacity = 200

	// Outbound frames queued per connection before it counts as a failed delivery.
	sendQueueSize = 256
)
