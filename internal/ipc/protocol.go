package ipc

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK        bool   `json:"ok"`
	State     string `json:"state,omitempty"`
	Listening bool   `json:"listening,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
}
