package ipmi

// HandlerFunc processes one IPMI command body and returns a completion code
// plus optional response data.
type HandlerFunc func(msg *IPMIMessage) (CompletionCode, []byte)

type cmdKey struct {
	netFn uint8
	cmd   uint8
}

// Router dispatches IPMI messages to registered (netfn, cmd) handlers.
// Registration happens at startup; dispatch is read-only afterwards.
type Router struct {
	handlers map[cmdKey]HandlerFunc
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{handlers: make(map[cmdKey]HandlerFunc)}
}

// Register installs a handler for the given netfn/cmd, replacing any previous
// registration.
func (r *Router) Register(netFn, cmd uint8, h HandlerFunc) {
	r.handlers[cmdKey{netFn: netFn, cmd: cmd}] = h
}

// Dispatch routes the message to its handler. Unregistered commands return
// CompletionCodeInvalidCommand.
func (r *Router) Dispatch(msg *IPMIMessage) (CompletionCode, []byte) {
	h, ok := r.handlers[cmdKey{netFn: msg.GetNetFn(), cmd: msg.Command}]
	if !ok {
		return CompletionCodeInvalidCommand, nil
	}
	return h(msg)
}
