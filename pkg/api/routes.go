package api

import (
	"github.com/rainmanp7/holokernel-EBOGS/pkg/host"
)

// Mount registers every kernel route on router and streams host activity
// through hub. The returned function detaches the hub from the host.
func Mount(router *Router, k *host.Host, hub *Hub) func() {
	NewKernelHandler(k).RegisterRoutes(router)
	NewConfigHandler(k.Config()).RegisterRoutes(router)
	NewExportHandler(k).RegisterRoutes(router)
	router.GET("/ws", NewWebSocketHandler(hub).HandleFunc())
	return hub.Attach(k)
}
