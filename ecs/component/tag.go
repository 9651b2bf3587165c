package component

// Tag is an entity's display name.
type Tag struct {
	Name string
}

var TagComponent = NewNamedComponent[Tag]("Tag")
