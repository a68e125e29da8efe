package domain

type CtxKey string

const (
	KeySessionUser CtxKey = "SessionUser"
	KeyRequestID   CtxKey = "RequestID"
)
