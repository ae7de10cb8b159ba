// Package integra is a client for the Satel Integra alarm panel's
// proprietary wire protocol, spoken over a plain or encrypted TCP
// socket (ports 7094/17094) or a local RS-232 link. It handles framing,
// optional encryption, request/response correlation, a background
// change-monitor, and state-diff/troubles decoding; it does not model
// the panel's object graph or persist anything beyond one process's
// lifetime — that belongs to a layer built on top.
//
// Grounded on original_source/satel_integra_api (client.py, channel.py,
// base.py).
package integra

import (
	_ "github.com/gosatel/integra/pkg/transport/serial"
	_ "github.com/gosatel/integra/pkg/transport/tcp"
)
