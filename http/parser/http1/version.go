package http1

import "github.com/indigo-web/wireparse/http/proto"

const (
	httpScheme = "HTTP"
	// maxVersionNumber bounds each of major and minor versions, keeping the arithmetic
	// far from overflowing.
	maxVersionNumber = 999
)

type versionStage uint8

const (
	eScheme versionStage = iota
	eMajor
	eMinor
)

type versionStep uint8

const (
	stepContinue versionStep = iota
	stepDone
	stepInvalid
)

// version parses the `HTTP/DIGIT+.DIGIT+` token byte by byte. It is shared by both start
// lines, which only differ in what terminates the token.
type version struct {
	stage        versionStage
	matched      int
	number       int
	digits       int
	major, minor int
}

func (v *version) step(c byte, terminator byte) versionStep {
	switch v.stage {
	case eScheme:
		if v.matched < len(httpScheme) {
			if c != httpScheme[v.matched] {
				return stepInvalid
			}

			v.matched++
			return stepContinue
		}

		if c != '/' {
			return stepInvalid
		}

		v.stage = eMajor
		return stepContinue
	case eMajor:
		if c == '.' {
			if v.digits == 0 {
				return stepInvalid
			}

			v.major = v.take()
			v.stage = eMinor
			return stepContinue
		}

		return v.digit(c)
	case eMinor:
		if c == terminator {
			if v.digits == 0 {
				return stepInvalid
			}

			v.minor = v.take()
			return stepDone
		}

		return v.digit(c)
	}

	return stepInvalid
}

func (v *version) digit(c byte) versionStep {
	if c < '0' || c > '9' {
		return stepInvalid
	}

	v.number = v.number*10 + int(c-'0')
	v.digits++
	if v.number > maxVersionNumber {
		return stepInvalid
	}

	return stepContinue
}

func (v *version) take() int {
	number := v.number
	v.number, v.digits = 0, 0

	return number
}

func (v *version) reset() {
	*v = version{}
}

// Version is a parsed protocol version.
type Version struct {
	Major, Minor int
}

// Proto maps the version into a known protocol, if any.
func (v Version) Proto() proto.Proto {
	return proto.Parse(v.Major, v.Minor)
}
