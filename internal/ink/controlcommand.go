package ink

// CommandType enumerates the operations ControlCommand can carry. Token
// strings are taken directly from the reference implementation's
// compiled-JSON vocabulary so the JSON codec round-trips byte for byte.
type CommandType int

const (
	CmdEvalStart CommandType = iota
	CmdEvalOutput
	CmdEvalEnd
	CmdDuplicate
	CmdPopEvaluatedValue
	CmdPopFunction
	CmdPopTunnel
	CmdBeginString
	CmdEndString
	CmdNoOp
	CmdChoiceCount
	CmdTurns
	CmdTurnsSince
	CmdReadCount
	CmdRandom
	CmdSeedRandom
	CmdVisitIndex
	CmdSequenceShuffleIndex
	CmdStartThread
	CmdDone
	CmdEnd
	CmdListFromInt
	CmdListRange
	CmdListRandom
	CmdBeginTag
	CmdEndTag
)

var commandNames = map[CommandType]string{
	CmdEvalStart:            "ev",
	CmdEvalOutput:           "out",
	CmdEvalEnd:              "/ev",
	CmdDuplicate:            "du",
	CmdPopEvaluatedValue:    "pop",
	CmdPopFunction:          "~ret",
	CmdPopTunnel:            "->->",
	CmdBeginString:          "str",
	CmdEndString:            "/str",
	CmdNoOp:                 "nop",
	CmdChoiceCount:          "choiceCnt",
	CmdTurns:                "turn",
	CmdTurnsSince:           "turns",
	CmdReadCount:            "readc",
	CmdRandom:               "rnd",
	CmdSeedRandom:           "srnd",
	CmdVisitIndex:           "visit",
	CmdSequenceShuffleIndex: "seq",
	CmdStartThread:          "thread",
	CmdDone:                 "done",
	CmdEnd:                  "end",
	CmdListFromInt:          "listInt",
	CmdListRange:            "range",
	CmdListRandom:           "lrnd",
	CmdBeginTag:             "#",
	CmdEndTag:               "/#",
}

var commandsByName map[string]CommandType

func init() {
	commandsByName = make(map[string]CommandType, len(commandNames))
	for k, v := range commandNames {
		commandsByName[v] = k
	}
}

// ControlCommandFromName looks up a ControlCommand by its compiled-JSON
// token string.
func ControlCommandFromName(name string) (*ControlCommand, bool) {
	k, ok := commandsByName[name]
	if !ok {
		return nil, false
	}
	return NewControlCommand(k), true
}

// ControlCommand is an instruction executed directly by the engine — the
// ink equivalent of a VM opcode with no operands (any operands it needs
// come from the evaluation stack).
type ControlCommand struct {
	baseObject
	Command CommandType
}

func NewControlCommand(cmd CommandType) *ControlCommand {
	c := &ControlCommand{Command: cmd}
	c.bindSelf(c)
	return c
}

func (c *ControlCommand) Type() ObjectType { return ObjControlCommand }

func (c *ControlCommand) String() string { return commandNames[c.Command] }
