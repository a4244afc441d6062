package command

// describedCommand overrides a wrapped Command's Info without touching its
// matching or execution behavior.
type describedCommand[K comparable] struct {
	Command[K]
	info Info
}

func (d describedCommand[K]) Info() Info {
	return d.info
}

// Described overrides cmd's description, leaving its trigger and behavior
// unchanged.
func Described[K comparable](cmd Command[K], description string) Command[K] {
	info := cmd.Info().WithDescription(description)
	return describedCommand[K]{Command: cmd, info: info}
}

type hiddenCommand[K comparable] struct {
	Command[K]
}

// Hidden reports true for any command wrapped with Hidden, letting
// Commands.Infos exclude it from help listings while still dispatching it
// normally.
func (h hiddenCommand[K]) Hidden() bool {
	return true
}

// Hidden marks cmd as runnable but excluded from help listings: useful for
// debug or deprecated aliases that shouldn't clutter !help.
func Hidden[K comparable](cmd Command[K]) Command[K] {
	return hiddenCommand[K]{Command: cmd}
}

func isHidden[K comparable](cmd Command[K]) bool {
	h, ok := cmd.(interface{ Hidden() bool })
	return ok && h.Hidden()
}

type prefixedCommand[K comparable] struct {
	Command[K]
	info Info
}

func (p prefixedCommand[K]) Info() Info {
	return p.info
}

// Prefixed renames cmd's trigger in help listings to read as a sub-command
// of prefix (e.g. "admin ban" instead of "ban"), without changing which
// messages actually match it.
func Prefixed[K comparable](prefix string, cmd Command[K]) Command[K] {
	return prefixedCommand[K]{Command: cmd, info: cmd.Info().PrependTrigger(prefix)}
}
