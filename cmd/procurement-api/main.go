package main

import "procurement-api/app"

func main() {
	app.Run()
}
