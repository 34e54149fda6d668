package main

import "github.com/m5dial/spiffs-uploader/cmd/spiffs-uploader/cmd"

func main() {
	cmd.Execute()
}
