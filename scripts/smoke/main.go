// Command smoke drives the full enrollment, session-open and check-in
// flow against a running server. It is a manual verification tool, not
// part of the service binary.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func main() {
	base := flag.String("base", "http://localhost:8080/api/v1", "API base URL")
	profFrame := flag.String("prof-frame", "", "path to a professor enrollment image")
	studentFrame := flag.String("student-frame", "", "path to a student enrollment image")
	flag.Parse()

	if *profFrame == "" || *studentFrame == "" {
		log.Fatal("both -prof-frame and -student-frame are required")
	}

	client := &http.Client{Timeout: 15 * time.Second}

	profImage := readImage(*profFrame)
	studentImage := readImage(*studentFrame)

	post(client, *base+"/enrollment/frames", map[string]any{
		"name": "Smoke", "code": "P900", "role": "PROFESSOR", "image": profImage,
	})
	post(client, *base+"/enrollment/frames", map[string]any{
		"name": "Probe", "code": "S900", "role": "STUDENT", "image": studentImage,
	})

	prof := post(client, *base+"/enrollment/professors", map[string]any{
		"name": "Smoke", "code": "P900", "class_name": "SMOKE101",
	})
	var reg struct {
		Class struct {
			ID int64 `json:"id"`
		} `json:"class"`
	}
	if err := json.Unmarshal(prof, &reg); err != nil {
		log.Fatalf("decode professor registration: %v", err)
	}
	classID := reg.Class.ID
	fmt.Printf("class created: id=%d\n", classID)

	post(client, *base+"/enrollment/students", map[string]any{
		"name": "Probe", "code": "S900", "class_id": classID,
	})

	open := post(client, *base+"/classes/open", map[string]any{"image": profImage})
	fmt.Printf("open session: %s\n", open)

	checkin := post(client, fmt.Sprintf("%s/classes/%d/checkins", *base, classID), map[string]any{
		"image": studentImage,
	})
	fmt.Printf("first check-in: %s\n", checkin)

	repeat := post(client, fmt.Sprintf("%s/classes/%d/checkins", *base, classID), map[string]any{
		"image": studentImage,
	})
	fmt.Printf("repeat check-in: %s\n", repeat)

	summary := get(client, fmt.Sprintf("%s/classes/%d/summary", *base, classID))
	fmt.Printf("session summary: %s\n", summary)
}

func readImage(path string) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func post(client *http.Client, url string, payload map[string]any) json.RawMessage {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Fatalf("marshal payload for %s: %v", url, err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	return decode(url, resp)
}

func get(client *http.Client, url string) json.RawMessage {
	resp, err := client.Get(url)
	if err != nil {
		log.Fatalf("GET %s: %v", url, err)
	}
	return decode(url, resp)
}

func decode(url string, resp *http.Response) json.RawMessage {
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		log.Fatalf("decode response from %s: %v", url, err)
	}
	if env.Error != nil {
		log.Fatalf("%s returned %s: %s", url, env.Error.Code, env.Error.Message)
	}
	return env.Data
}
