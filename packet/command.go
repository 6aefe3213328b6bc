package packet

const CommandStats = "stats"

// EncodeCommand builds a control request, "\x00\x00stats" for the stats command.
func EncodeCommand(cmd string) []byte {
	buf := make([]byte, 2, 2+len(cmd))
	buf[0] = ProtocolVersion
	buf[1] = TypeCommand
	return append(buf, cmd...)
}

func ParseCommand(b []byte) (string, error) {
	typ, err := Type(b)
	if err != nil {
		return "", err
	}
	if typ != TypeCommand {
		return "", ErrInvalidType
	}
	return string(b[2:]), nil
}
