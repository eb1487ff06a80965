// Package policy validates content writes with a rego policy.
package policy

// DefaultPolicy is the default content policy. Every rule adds a message to
// the violations set; an empty set accepts the write.
const DefaultPolicy = `
package content_policy

color_pattern := "^#[0-9a-fA-F]{6}$"
name_pattern := "^[a-zA-Z0-9_-]+$"
max_lines := 13
max_checksum := 64

violations[msg] {
	trim_space(input.title) == ""
	msg := "title is required"
}

violations[msg] {
	count(input.checksum) > max_checksum
	msg := sprintf("checksum exceeds %d characters", [max_checksum])
}

violations[msg] {
	a := input.sessions[i]
	b := input.sessions[j]
	i < j
	a.session_order == b.session_order
	msg := sprintf("session_order %d is used more than once", [a.session_order])
}

violations[msg] {
	s := input.sessions[_]
	s.session_order < 0
	msg := sprintf("session %d: session_order must not be negative", [s.session_order])
}

violations[msg] {
	s := input.sessions[_]
	s.delay < 0
	msg := sprintf("session %d: delay must not be negative", [s.session_order])
}

violations[msg] {
	s := input.sessions[_]
	c := s.text.color
	not regex.match(color_pattern, c)
	msg := sprintf("session %d: text color %q must be #RRGGBB", [s.session_order, c])
}

violations[msg] {
	s := input.sessions[_]
	s.text.start_index < 0
	msg := sprintf("session %d: text start_index must not be negative", [s.session_order])
}

violations[msg] {
	s := input.sessions[_]
	count(s.lines) > max_lines
	msg := sprintf("session %d: at most %d lines allowed", [s.session_order, max_lines])
}

violations[msg] {
	s := input.sessions[_]
	l := s.lines[_]
	not regex.match(color_pattern, l.color)
	msg := sprintf("session %d: line %d color %q must be #RRGGBB", [s.session_order, l.start_index, l.color])
}

violations[msg] {
	s := input.sessions[_]
	l := s.lines[_]
	l.start_index < 0
	msg := sprintf("session %d: line start_index must not be negative", [s.session_order])
}

violations[msg] {
	s := input.sessions[_]
	a := s.lines[i]
	b := s.lines[j]
	i < j
	a.start_index == b.start_index
	msg := sprintf("session %d: line start_index %d is used more than once", [s.session_order, a.start_index])
}

violations[msg] {
	s := input.sessions[_]
	s.animation.loop_count < 0
	msg := sprintf("session %d: loop_count must not be negative", [s.session_order])
}

violations[msg] {
	s := input.sessions[_]
	s.animation.time_between_images < 0
	msg := sprintf("session %d: time_between_images must not be negative", [s.session_order])
}

violations[msg] {
	s := input.sessions[_]
	name := s.animation.images[_]
	not regex.match(name_pattern, name)
	msg := sprintf("session %d: image name %q may only contain letters, digits, '_' and '-'", [s.session_order, name])
}

violations[msg] {
	s := input.sessions[_]
	name := s.animation.images[_]
	regex.match(name_pattern, name)
	not input.registry[name]
	msg := sprintf("session %d: image %q is not registered", [s.session_order, name])
}

violations[msg] {
	name := input.image.name
	not regex.match(name_pattern, name)
	msg := sprintf("image name %q may only contain letters, digits, '_' and '-'", [name])
}
`
