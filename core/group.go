package core

// Group is a subject namespace for endpoints.
type Group interface {
	AddGroup(string, ...GroupOpt) Group
	AddEndpoint(string, Handler, ...EndpointOpt) error
}

// GroupOpt is a functional option for groups.
type GroupOpt func(*groupOpts)

type groupOpts struct {
	queueGroup string
	qgDisabled bool
}

type group struct {
	service            *service
	prefix             string
	queueGroup         string
	queueGroupDisabled bool
}

// AddGroup creates a nested group with a prefixed subject.
func (g *group) AddGroup(name string, opts ...GroupOpt) Group {
	var o groupOpts
	for _, opt := range opts {
		opt(&o)
	}
	qg, noQ := resolveQueueGroup(o.queueGroup, g.queueGroup, o.qgDisabled, g.queueGroupDisabled)
	return &group{
		service:            g.service,
		prefix:             joinParts(g.prefix, name),
		queueGroup:         qg,
		queueGroupDisabled: noQ,
	}
}

// AddEndpoint registers an endpoint under the group prefix.
func (g *group) AddEndpoint(name string, handler Handler, opts ...EndpointOpt) error {
	return g.service.addEndpoint(g.prefix, name, g.queueGroup, g.queueGroupDisabled, handler, opts...)
}

// WithGroupQueueGroup sets a queue group for a group.
func WithGroupQueueGroup(qg string) GroupOpt {
	return func(o *groupOpts) { o.queueGroup = qg }
}

// WithGroupQueueGroupDisabled disables queue group usage.
func WithGroupQueueGroupDisabled() GroupOpt {
	return func(o *groupOpts) { o.qgDisabled = true }
}
