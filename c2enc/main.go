package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	codec2 "github.com/gnuradio/gnuradio-sub000"
	"github.com/sirupsen/logrus"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-mode 3200|2400|1600|1400|1300|1200] [-trace] InputRawspeechFile OutputBitFile\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (headerless)    %s -mode 1200 input.raw output.bin\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "e.g. (with header)   %s -mode 1200 input.raw output.c2\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	modeName := flag.String("mode", "3200", "coding mode (bit rate)")
	trace := flag.Bool("trace", false, "log every codec state transition")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 2 {
		usage()
	}
	inputFile, outputFile := flag.Arg(0), flag.Arg(1)

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if *verbose || *trace {
		log.SetLevel(logrus.DebugLevel)
	}

	mode, err := codec2.ParseMode(*modeName)
	if err != nil {
		log.Fatalf("Error parsing mode: %v", err)
	}
	opts := []codec2.Option{codec2.WithLogger(log)}
	if *trace {
		opts = append(opts, codec2.WithTraceSink(codec2.LogTraceSink(log)))
	}
	codec, err := codec2.New(mode, opts...)
	if err != nil {
		log.Fatalf("Error creating codec: %v", err)
	}
	defer codec.Close()

	var fin *os.File
	if inputFile == "-" {
		fin = os.Stdin
	} else if fin, err = os.Open(inputFile); err != nil {
		log.Fatalf("Error opening input speech file: %s: %v", inputFile, err)
	}
	defer fin.Close()

	var fout *os.File
	if outputFile == "-" {
		fout = os.Stdout
	} else if fout, err = os.Create(outputFile); err != nil {
		log.Fatalf("Error opening output compressed bit file: %s: %v", outputFile, err)
	}
	defer fout.Close()
	out := bufio.NewWriter(fout)

	// Add a c2 header if the output file has a .c2 extension.
	if strings.ToLower(filepath.Ext(outputFile)) == ".c2" {
		header, _ := codec2.NewHeader(mode).MarshalBinary()
		if _, err := out.Write(header); err != nil {
			log.Fatalf("Error writing header: %v", err)
		}
	}

	n := codec.SamplesPerFrame()
	frame := make([]byte, n*2)
	pcm := make([]int16, n)
	frames := 0
	for {
		if _, err := io.ReadFull(fin, frame); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break // Don't process partial frames.
			}
			log.Fatalf("Error reading input: %v", err)
		}
		for j := range pcm {
			pcm[j] = int16(binary.LittleEndian.Uint16(frame[j*2:]))
		}

		bits, err := codec.Encode(pcm)
		if err != nil {
			log.Fatalf("Error encoding frame %d: %v", frames+1, err)
		}
		if _, err := out.Write(bits); err != nil {
			log.Fatalf("Error writing output: %v", err)
		}
		frames++

		// Flush per frame when used in a pipeline.
		if fout == os.Stdout {
			if err := out.Flush(); err != nil {
				log.Fatalf("Error writing output: %v", err)
			}
		}
	}
	if err := out.Flush(); err != nil {
		log.Fatalf("Error writing output: %v", err)
	}

	stats := codec.Stats()
	log.WithFields(logrus.Fields{
		"mode":          mode.String(),
		"frames":        frames,
		"lsp_fallbacks": stats.LspFallbacks,
	}).Debug("encode complete")
}
