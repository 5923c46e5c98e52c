package core

// Verb is a control operation every service answers.
type Verb int64

const (
	PingVerb Verb = iota
	StatsVerb
	InfoVerb
)

const (
	ErrorHeader       = "Nats-Service-Error"
	ErrorCodeHeader   = "Nats-Service-Error-Code"
	InfoResponseType  = "io.nats.micro.v1.info_response"
	PingResponseType  = "io.nats.micro.v1.ping_response"
	StatsResponseType = "io.nats.micro.v1.stats_response"
)

func (v Verb) String() string {
	switch v {
	case PingVerb:
		return "PING"
	case StatsVerb:
		return "STATS"
	case InfoVerb:
		return "INFO"
	default:
		return ""
	}
}

// ServiceIdentity holds metadata for a service instance.
type ServiceIdentity struct {
	Name     string            `json:"name"`
	ID       string            `json:"id"`
	Version  string            `json:"version"`
	Metadata map[string]string `json:"metadata"`
}

// Ping is the PING response.
type Ping struct {
	ServiceIdentity
	Type string `json:"type"`
}

// Info is the INFO response.
type Info struct {
	ServiceIdentity
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Endpoints   []EndpointInfo `json:"endpoints"`
}

// EndpointInfo describes a single endpoint.
type EndpointInfo struct {
	Name       string            `json:"name"`
	Subject    string            `json:"subject"`
	QueueGroup string            `json:"queue_group"`
	Metadata   map[string]string `json:"metadata"`
}
