package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Realtime        Category = "Realtime"
	Registry        Category = "Registry"
	RabbitMQ        Category = "RabbitMQ"
	Mongo           Category = "Mongo"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
)

const (
	Startup         SubCategory = "Startup"
	Shutdown        SubCategory = "Shutdown"
	Sweep           SubCategory = "Sweep"
	Broadcast       SubCategory = "Broadcast"
	RateLimiting    SubCategory = "RateLimiting"
	ExternalService SubCategory = "ExternalService"
)

const (
	AppName      ExtraKey = "AppName"
	RoomCode     ExtraKey = "RoomCode"
	ClientID     ExtraKey = "ClientID"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
