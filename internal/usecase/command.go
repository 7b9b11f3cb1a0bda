package usecase

import (
	"strings"

	"flightbot-service/internal/domain/entity"
)

// Command is a recognised reply. Anything else is free text.
type Command int

const (
	CommandNone Command = iota
	CommandCancel
	CommandReset
	CommandGreeting
	CommandYes
	CommandChange
	CommandChangeDate
	CommandChangeOrigin
	CommandChangeDestination
	CommandChangeClass
	CommandShowMore
	CommandRunSearch
	CommandRemoveReturn
)

var commandNames = [...]string{
	CommandNone:              "none",
	CommandCancel:            "cancel",
	CommandReset:             "reset",
	CommandGreeting:          "greeting",
	CommandYes:               "yes",
	CommandChange:            "change",
	CommandChangeDate:        "change_date",
	CommandChangeOrigin:      "change_origin",
	CommandChangeDestination: "change_destination",
	CommandChangeClass:       "change_class",
	CommandShowMore:          "show_more",
	CommandRunSearch:         "run_search",
	CommandRemoveReturn:      "remove_return",
}

func (c Command) String() string {
	if c < 0 || int(c) >= len(commandNames) {
		return "unknown"
	}
	return commandNames[c]
}

var commandWords = map[string]Command{
	"cancel": CommandCancel,

	"reset":       CommandReset,
	"new search":  CommandReset,
	"restart":     CommandReset,
	"start over":  CommandReset,
	"start again": CommandReset,

	"hi":    CommandGreeting,
	"hello": CommandGreeting,
	"hey":   CommandGreeting,

	"yes":     CommandYes,
	"y":       CommandYes,
	"confirm": CommandYes,

	"change":             CommandChange,
	"change date":        CommandChangeDate,
	"change origin":      CommandChangeOrigin,
	"change from":        CommandChangeOrigin,
	"change destination": CommandChangeDestination,
	"change to":          CommandChangeDestination,
	"change class":       CommandChangeClass,
	"change cabin":       CommandChangeClass,

	"show more": CommandShowMore,
	"more":      CommandShowMore,
	"next":      CommandShowMore,

	"run search":   CommandRunSearch,
	"search again": CommandRunSearch,

	"remove return": CommandRemoveReturn,
}

var fieldWords = map[string]entity.ChangeTarget{
	"date":        entity.ChangeDate,
	"origin":      entity.ChangeOrigin,
	"from":        entity.ChangeOrigin,
	"destination": entity.ChangeDestination,
	"to":          entity.ChangeDestination,
	"class":       entity.ChangeClass,
	"cabin":       entity.ChangeClass,
}

// NormalizeText lowercases text, collapses whitespace and drops trailing punctuation
func NormalizeText(text string) string {
	text = strings.Join(strings.Fields(strings.ToLower(text)), " ")
	return strings.TrimRight(text, ".!?")
}

// ParseCommand matches the whole reply against the command grammar
func ParseCommand(text string) Command {
	return commandWords[NormalizeText(text)]
}

// ParseField reads a bare field name, as sent after "change"
func ParseField(text string) (entity.ChangeTarget, bool) {
	target, ok := fieldWords[NormalizeText(text)]
	return target, ok
}

// Target maps a change command to the field it amends
func (c Command) Target() (entity.ChangeTarget, bool) {
	switch c {
	case CommandChangeDate:
		return entity.ChangeDate, true
	case CommandChangeOrigin:
		return entity.ChangeOrigin, true
	case CommandChangeDestination:
		return entity.ChangeDestination, true
	case CommandChangeClass:
		return entity.ChangeClass, true
	}
	return entity.ChangeNone, false
}

// ParseCabinClass accepts the menu number or the class name
func ParseCabinClass(text string) (entity.CabinClass, bool) {
	switch NormalizeText(text) {
	case "1", "economy":
		return entity.CabinEconomy, true
	case "2", "premium economy", "premium":
		return entity.CabinPremiumEconomy, true
	case "3", "business":
		return entity.CabinBusiness, true
	case "4", "first", "first class":
		return entity.CabinFirst, true
	}
	return "", false
}
