// Package nats mirrors the camera session onto NATS subjects so other
// processes can follow it, and accepts remote lifecycle commands.
//
// # Subject Hierarchy
//
//	campreview.session.state       # SessionStateChangedEvent (published)
//	campreview.preview.selected    # PreviewSelectedEvent (published)
//	campreview.notices             # NoticeEvent (published)
//	campreview.errors              # CameraErrorEvent (published)
//	campreview.control.{action}    # ControlMessage, action resume or pause (subscribed)
//
// Messages are JSON and fire-and-forget (core NATS, no JetStream). The
// bridge keeps running without a server and reconnects when one appears.
//
// # Debugging with nats CLI
//
// Follow the session:
//
//	nats sub "campreview.>"
//
// Pause the preview remotely:
//
//	nats pub campreview.control.pause '{"action":"pause","reason":"manual"}'
//
// An embedded server can be started with --nats-embedded for setups that
// have no broker of their own.
package nats
