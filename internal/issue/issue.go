// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	BuildfileNotFoundId Id = iota + 1
	BuildfileParseErrorId
	ContainerEngineNotFoundId
	BaseImagePullFailedId
	StageFailedId
	ConfigLoadFailedId
	PermissionDeniedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	buildfileNotFoundIssue = &Issue{
		id: BuildfileNotFoundId,
		mdMsg: `
# No envforge.cue found!

We searched for a build descriptor but couldn't find one in the expected locations.

## Search locations (in order of precedence):
1. Path given with -f/--file
2. Current directory

## Things you can try:
- Create a descriptor in your current directory:
~~~
$ envforge init
~~~

- Or point at an existing one:
~~~
$ envforge build -f path/to/envforge.cue
~~~

## Example descriptor structure:
~~~cue
name: "my-env"
base: {
	image: "python:3.10"
	env: PYTHONUNBUFFERED: "1"
}
system: {
	manager: "apt"
	packages: ["git", "build-essential"]
}
app: {
	source:    "."
	installer: "pip"
}
~~~`,
	}

	buildfileParseErrorIssue = &Issue{
		id: BuildfileParseErrorId,
		mdMsg: `
# Failed to parse the build descriptor!

Your envforge.cue contains syntax errors or invalid configuration.

## Common issues:
- Invalid CUE syntax (missing quotes, braces, etc.)
- Unknown field names
- Invalid values for known fields
- Missing required fields (name, base.image)
- A relative workdir (must start with /)

## Things you can try:
- Check the error message above for the specific field
- Validate the descriptor without building:
~~~
$ envforge validate
~~~

- Run with verbose mode for more details:
~~~
$ envforge --verbose build
~~~`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# Container engine not found!

Building images requires a container engine, but none is available.

## Supported container engines:
- **Docker**
- **Podman** (rootless-friendly)

## Things you can try:
- Install Docker:
  - https://docs.docker.com/get-docker/

- Install Podman:
  - Linux: ` + "`sudo apt install podman`" + ` or ` + "`sudo dnf install podman`" + `
  - macOS: ` + "`brew install podman`" + `
  - Windows: Download from https://podman.io

- Configure your preferred engine in ~/.config/envforge/config.cue:
~~~cue
container_engine: "podman"  // or "docker"
~~~

- If an engine is installed, check its daemon/service is running`,
	}

	baseImagePullFailedIssue = &Issue{
		id: BaseImagePullFailedId,
		mdMsg: `
# Failed to pull the base image!

The base image declared in your descriptor could not be pulled.

## Common causes:
- Typo in the image reference
- The tag does not exist upstream
- Registry requires authentication
- Network/proxy problems

## Things you can try:
- Pull the image manually to see the real error:
~~~
$ docker pull <base-image>
~~~

- Pin a tag that exists (avoid relying on ` + "`latest`" + `)
- Log in to the registry if it is private:
~~~
$ docker login <registry>
~~~`,
	}

	stageFailedIssue = &Issue{
		id: StageFailedId,
		mdMsg: `
# A build stage failed!

One of the image build stages exited with an error. The build stops at the
first failing stage; later stages were not attempted and no image was tagged.

## Stage order:
1. **base**: base image and environment variables
2. **system**: OS package installation
3. **app**: application source install
4. **extras**: additional packages, one step each

## Things you can try:
- Read the failing step in the build output above
- For system stage failures, check the package names exist for your
  base image's distribution (apt vs apk)
- For app/extras stage failures, try the same install command inside
  the base image:
~~~
$ docker run --rm -it <base-image> bash
~~~

- Run with verbose mode for the full engine output:
~~~
$ envforge --verbose build
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the envforge configuration file.

## Configuration file locations:
- Linux: ~/.config/envforge/config.cue
- macOS: ~/Library/Application Support/envforge/config.cue
- Windows: %APPDATA%\envforge\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ envforge config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults:
~~~
$ rm ~/.config/envforge/config.cue
~~~

## Example configuration:
~~~cue
container_engine: "docker"
cache_dir: "/home/user/.cache/envforge"

ui: {
  verbose: false
}
~~~`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to perform this operation.

## Common causes:
- The container engine socket requires elevated permissions
- Trying to write the build cache to a protected directory

## Things you can try:
- For Docker, ensure you're in the docker group:
~~~
$ sudo usermod -aG docker $USER
~~~

- Use rootless containers with Podman
- Point cache_dir at a directory you own`,
	}

	issues = map[Id]*Issue{
		buildfileNotFoundIssue.Id():       buildfileNotFoundIssue,
		buildfileParseErrorIssue.Id():     buildfileParseErrorIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		baseImagePullFailedIssue.Id():     baseImagePullFailedIssue,
		stageFailedIssue.Id():             stageFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
