//go:build darwin

package statictable

import (
	_ "embed"

	"github.com/rmkfs/rmkfs/internal/schema"
)

//go:embed resources/volicon.icns
var volIcon []byte

//go:embed resources/dot_volicon.icns
var dotVolIcon []byte

//go:embed resources/dot_underscore
var dotUnderscore []byte

//go:embed resources/dot_timemachine
var dotTimemachine []byte

// platformNodes are the macOS Finder integration dot-files: a volume icon
// and the Apple Double / Time Machine exclusion markers Finder expects at
// the root of any mounted volume.
var platformNodes = []node{
	{id: ".VolumeIcon.icns", typ: schema.DocumentType, name: ".VolumeIcon.icns", content: volIcon},
	{id: "._.VolumeIcon.icns", typ: schema.DocumentType, name: "._.VolumeIcon.icns", content: dotVolIcon},
	{id: "._.", typ: schema.DocumentType, name: "._.", content: dotUnderscore},
	{id: "._.com.apple.timemachine.donotpresent", typ: schema.DocumentType, name: "._.com.apple.timemachine.donotpresent", content: dotTimemachine},
}
