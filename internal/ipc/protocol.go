package ipc

// Command enumerates the operations a session owner accepts over the socket.
type Command string

const (
	CommandStatus Command = "status"
	CommandSubmit Command = "submit"
	CommandFinish Command = "finish"
	CommandQuit   Command = "quit"
	CommandMic    Command = "mic"
)

// Known reports whether the command is part of the session protocol.
func (c Command) Known() bool {
	switch c {
	case CommandStatus, CommandSubmit, CommandFinish, CommandQuit, CommandMic:
		return true
	}
	return false
}

// Request is one newline-framed JSON command sent to the session owner.
type Request struct {
	Command Command `json:"command"`
}

// Response is the owner's reply. Turn, Remaining, Listening, and Buffer carry
// the live session snapshot answered to status requests.
type Response struct {
	OK        bool   `json:"ok"`
	State     string `json:"state,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Turn      int    `json:"turn,omitempty"`
	Remaining int    `json:"remaining,omitempty"`
	Listening bool   `json:"listening,omitempty"`
	Buffer    string `json:"buffer,omitempty"`
}
