package app

import (
	"github.com/zjrosen/scli/internal/script"
	"github.com/zjrosen/scli/internal/scripts/cobolprocessor"
	"github.com/zjrosen/scli/internal/scripts/csvviewer"
	"github.com/zjrosen/scli/internal/scripts/filecounter"
	"github.com/zjrosen/scli/internal/scripts/helloworld"
	"github.com/zjrosen/scli/internal/scripts/networktools"
	"github.com/zjrosen/scli/internal/scripts/systeminfo"
)

// coreModules is the list of all built-in script modules compiled into scli.
var coreModules = []script.Module{
	&helloworld.Module{},
	&systeminfo.Module{},
	&filecounter.Module{},
	&networktools.Module{},
	&csvviewer.Module{},
	&cobolprocessor.Module{},
}

// Builtins returns a fresh table of every compiled-in entry point.
func Builtins() *script.Builtins {
	return script.NewBuiltinsFrom(coreModules...)
}
